package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSeedBurst  BookmarkType = "seed_burst"
	BookmarkRecovery   BookmarkType = "population_recovery"
	BookmarkCrash      BookmarkType = "population_crash"
	BookmarkExtinction BookmarkType = "extinction"
	BookmarkStable     BookmarkType = "stable_population"
)

// Detection thresholds.
const (
	seedBurstFactor   = 2.0  // dispersed seeds vs rolling average
	seedBurstMin      = 50   // minimum dispersed seeds for a burst
	recoveryFloor     = 10   // total at or below this counts as a low point
	recoveryFactor    = 3    // recovery when total reaches factor * low point
	crashDrop         = 0.30 // fraction lost from recent peak
	crashMinDrop      = 10
	stableMinTotal    = 10
	stableCV2         = 0.04 // CV^2 < 0.04 means CV < 0.2
	stableSpan        = 4    // windows in the variance check
	stableTriggerRuns = 5    // consecutive stable windows before firing
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the population record.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentLow          uint64 // lowest total since the last recovery; 0 = none
	hasLow             bool
	recentPeak         uint64 // highest total since the last crash
	stableWindowsCount int
	extinct            bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableSpan+1 {
		historySize = stableSpan + 1
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkSeedBurst,
			bd.checkRecovery,
			bd.checkCrash,
			bd.checkExtinction,
			bd.checkStable,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if stats.Total <= recoveryFloor && (!bd.hasLow || stats.Total < bd.recentLow) {
		bd.recentLow = stats.Total
		bd.hasLow = true
	}
	if stats.Total > bd.recentPeak {
		bd.recentPeak = stats.Total
	}
	if stats.Total > 0 {
		bd.extinct = false
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkSeedBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	seeds := make([]float64, len(history))
	for i, h := range history {
		seeds[i] = float64(h.DispersedSeeds)
	}
	avg := stat.Mean(seeds, nil)
	if avg == 0 {
		return nil
	}

	current := float64(stats.DispersedSeeds)
	if current > avg*seedBurstFactor && stats.DispersedSeeds >= seedBurstMin {
		return &Bookmark{
			Type:        BookmarkSeedBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Dispersed %d seeds, %.1fx average (%.0f)", stats.DispersedSeeds, current/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkRecovery(stats WindowStats) *Bookmark {
	if !bd.hasLow {
		return nil
	}
	threshold := bd.recentLow * recoveryFactor
	if threshold < recoveryFloor {
		threshold = recoveryFloor
	}
	if stats.Total > threshold {
		oldLow := bd.recentLow
		bd.hasLow = false
		return &Bookmark{
			Type:        BookmarkRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldLow, stats.Total),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 || stats.Total >= bd.recentPeak {
		return nil
	}

	drop := 1.0 - float64(stats.Total)/float64(bd.recentPeak)
	if drop > crashDrop && bd.recentPeak-stats.Total > crashMinDrop {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Total
		return &Bookmark{
			Type:        BookmarkCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Total),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Total != 0 || bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: "No individuals left in any cell",
	}
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Total < stableMinTotal {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < stableSpan {
		return nil
	}

	totals := make([]float64, stableSpan)
	for i, h := range history[len(history)-stableSpan:] {
		totals[i] = float64(h.Total)
	}
	mean, variance := stat.PopMeanVariance(totals, nil)

	if mean > 0 && variance/(mean*mean) < stableCV2 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == stableTriggerRuns {
		return &Bookmark{
			Type:        BookmarkStable,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d over %d+ windows", stats.Total, stableTriggerRuns),
		}
	}
	return nil
}
