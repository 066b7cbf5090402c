package game

import (
	"log/slog"

	"github.com/pthm-cable/treegro/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	// Flush the stats window
	stats := g.collector.Flush(g.tick, g.census())
	perfStats := g.perfCollector.Stats()
	g.failureLogged = false

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// census samples the population of every stand and the mean resource level.
func (g *Game) census() telemetry.Census {
	var c telemetry.Census

	query := g.censusFilter.Query()
	for query.Next() {
		_, stand := query.Get()
		m := stand.Machine
		if m == nil {
			continue
		}
		c.Immature += uint64(m.Immature())
		c.Mature += uint64(m.Mature())
		c.Snags += uint64(m.Snags())
		if total := m.Total(); total > 0 {
			c.CellTotals = append(c.CellTotals, float64(total))
		}
	}

	c.MeanResource = g.resourceField.MeanAll()
	return c
}
