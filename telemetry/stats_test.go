package telemetry

import (
	"math"
	"testing"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty slice", []float64{}, Distribution{}},
		{"single element", []float64{5}, Distribution{Mean: 5, P10: 5, P50: 5, P90: 5, Max: 5}},
		{"ten", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Distribution{Mean: 5.5, P10: 1, P50: 5, P90: 9, Max: 10}},
		{"skewed", []float64{1, 1, 1, 1, 96}, Distribution{Mean: 20, P10: 1, P50: 1, P90: 96, Max: 96}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDistribution(tt.values)
			fields := []struct {
				name      string
				got, want float64
			}{
				{"Mean", got.Mean, tt.want.Mean},
				{"P10", got.P10, tt.want.P10},
				{"P50", got.P50, tt.want.P50},
				{"P90", got.P90, tt.want.P90},
				{"Max", got.Max, tt.want.Max},
			}
			for _, f := range fields {
				if math.Abs(f.got-f.want) > 0.001 {
					t.Errorf("ComputeDistribution(%v).%s = %v, want %v", tt.values, f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestComputeDistributionKeepsInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeDistribution(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
