package systems

import "testing"

func TestModInt(t *testing.T) {
	tests := []struct {
		a, m, want int
	}{
		{0, 5, 0},
		{7, 5, 2},
		{-1, 5, 4},
		{-5, 5, 0},
		{-6, 5, 4},
	}
	for _, tt := range tests {
		if got := modInt(tt.a, tt.m); got != tt.want {
			t.Errorf("modInt(%d, %d) = %d, want %d", tt.a, tt.m, got, tt.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
