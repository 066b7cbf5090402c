package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end, summed over every cell
	Immature uint64 `csv:"immature"`
	Mature   uint64 `csv:"mature"`
	Snags    uint64 `csv:"snags"`
	Total    uint64 `csv:"total"`

	// Per-cell totals over occupied cells
	OccupiedCells int     `csv:"occupied_cells"`
	CellTotalMean float64 `csv:"cell_total_mean"`
	CellTotalP10  float64 `csv:"cell_total_p10"`
	CellTotalP50  float64 `csv:"cell_total_p50"`
	CellTotalP90  float64 `csv:"cell_total_p90"`
	MaxCellTotal  float64 `csv:"max_cell_total"`

	// Events during window
	FailedSteps    int    `csv:"failed_steps"`
	InsertedSeeds  uint64 `csv:"inserted_seeds"`
	DispersedSeeds uint64 `csv:"dispersed_seeds"`
	Germinated     uint64 `csv:"germinated"`
	NewlyMature    uint64 `csv:"newly_mature"`
	Deaths         uint64 `csv:"deaths"`
	Decomposed     uint64 `csv:"decomposed"`

	// Mean resource level over cells and channels at window end
	MeanResource float64 `csv:"mean_resource"`
}

// Distribution summarizes a set of values.
type Distribution struct {
	Mean, P10, P50, P90, Max float64
}

// ComputeDistribution calculates the mean, empirical percentiles and maximum
// of values. values is not modified. Returns zeros for an empty slice.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Max:  floats.Max(sorted),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Uint64("immature", s.Immature),
		slog.Uint64("mature", s.Mature),
		slog.Uint64("snags", s.Snags),
		slog.Uint64("total", s.Total),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Float64("cell_total_mean", s.CellTotalMean),
		slog.Float64("cell_total_p50", s.CellTotalP50),
		slog.Float64("max_cell_total", s.MaxCellTotal),
		slog.Int("failed_steps", s.FailedSteps),
		slog.Uint64("inserted_seeds", s.InsertedSeeds),
		slog.Uint64("dispersed_seeds", s.DispersedSeeds),
		slog.Uint64("germinated", s.Germinated),
		slog.Uint64("newly_mature", s.NewlyMature),
		slog.Uint64("deaths", s.Deaths),
		slog.Uint64("decomposed", s.Decomposed),
		slog.Float64("mean_resource", s.MeanResource),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"immature", s.Immature,
		"mature", s.Mature,
		"snags", s.Snags,
		"total", s.Total,
		"occupied_cells", s.OccupiedCells,
		"cell_total_mean", s.CellTotalMean,
		"cell_total_p10", s.CellTotalP10,
		"cell_total_p50", s.CellTotalP50,
		"cell_total_p90", s.CellTotalP90,
		"max_cell_total", s.MaxCellTotal,
		"failed_steps", s.FailedSteps,
		"inserted_seeds", s.InsertedSeeds,
		"dispersed_seeds", s.DispersedSeeds,
		"germinated", s.Germinated,
		"newly_mature", s.NewlyMature,
		"deaths", s.Deaths,
		"decomposed", s.Decomposed,
		"mean_resource", s.MeanResource,
	)
}
