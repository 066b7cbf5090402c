package systems

// Grid helpers shared by the resource field and reseeder.

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// modInt wraps a onto [0, m) so grid coordinates are toroidal.
func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
