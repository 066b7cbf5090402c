package telemetry

import (
	"github.com/pthm-cable/treegro/lifecycle"
)

// Collector accumulates stand events within windows of ticks and produces
// WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	failedSteps    int
	insertedSeeds  uint64
	dispersedSeeds uint64
	germinated     uint64
	newlyMature    uint64
	deaths         uint64
	decomposed     uint64
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int32(windowTicks)}
}

// RecordTick adds the flows of one stand step.
func (c *Collector) RecordTick(r lifecycle.TickReport) {
	c.insertedSeeds += uint64(r.InsertedSeeds)
	c.dispersedSeeds += uint64(r.DispersedSeeds)
	c.germinated += uint64(r.Germinated)
	c.newlyMature += uint64(r.NewlyMature)
	c.deaths += uint64(r.Deaths)
	c.decomposed += uint64(r.Decomposed)
}

// RecordFailures records stand steps that returned an error.
func (c *Collector) RecordFailures(n int) {
	c.failedSteps += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Census is the population state sampled at the end of a window.
type Census struct {
	Immature, Mature, Snags uint64
	CellTotals              []float64 // totals of occupied cells only
	MeanResource            float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, census Census) WindowStats {
	dist := ComputeDistribution(census.CellTotals)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Immature: census.Immature,
		Mature:   census.Mature,
		Snags:    census.Snags,
		Total:    census.Immature + census.Mature + census.Snags,

		OccupiedCells: len(census.CellTotals),
		CellTotalMean: dist.Mean,
		CellTotalP10:  dist.P10,
		CellTotalP50:  dist.P50,
		CellTotalP90:  dist.P90,
		MaxCellTotal:  dist.Max,

		FailedSteps:    c.failedSteps,
		InsertedSeeds:  c.insertedSeeds,
		DispersedSeeds: c.dispersedSeeds,
		Germinated:     c.germinated,
		NewlyMature:    c.newlyMature,
		Deaths:         c.deaths,
		Decomposed:     c.decomposed,

		MeanResource: census.MeanResource,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.failedSteps = 0
	c.insertedSeeds = 0
	c.dispersedSeeds = 0
	c.germinated = 0
	c.newlyMature = 0
	c.deaths = 0
	c.decomposed = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
