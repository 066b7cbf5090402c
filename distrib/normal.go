// Package distrib provides cheap closed-form approximations of the normal
// distribution and a discretizer that turns a population size and an age
// spread into per-age cohort counts.
package distrib

import "math"

// Approximation constants. Both are reproducible with cmd/calibrate, which fits
// them against the exact normal CDF.
const (
	// LogisticSlope scales the logistic curve 1/(1+e^(-k*z)) so it tracks the
	// standard normal CDF Φ(z). Max deviation over z is about 0.013.
	LogisticSlope = 1.65451

	// SmoothstepWidth is the span, in standard deviations, of the quintic
	// smoothstep ramp used as a CDF. The ramp runs from mean-2.55σ (0) to
	// mean+2.55σ (1), where Φ is within 0.6% of its limits.
	SmoothstepWidth = 5.1
)

// CDF approximates the normal cumulative distribution function at x.
func CDF(mean, std, x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-(LogisticSlope/std)*(x-mean)))
}

// ProbabilityInRange approximates P(lo <= X < hi) for X ~ N(mean, std²).
func ProbabilityInRange(mean, std, lo, hi float64) float64 {
	return CDF(mean, std, hi) - CDF(mean, std, lo)
}

// Smoothstep is the quintic 6t⁵-15t⁴+10t³ with t clamped to [0,1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * t * (t*(t*6-15) + 10)
}

// SmoothstepTail approximates P(X >= x) for X ~ N(mean, std²) using only a
// quintic polynomial. std must be positive.
func SmoothstepTail(mean, std, x float64) float64 {
	return 1 - Smoothstep((x-mean)/(SmoothstepWidth*std)+0.5)
}

// bucketCount is the expected number of individuals whose age rounds to age.
func bucketCount(popSize uint32, std float64, age int) float64 {
	a := float64(age)
	return ProbabilityInRange(0, std, a-0.5, a+0.5) * float64(popSize)
}

// DiscretizePopulation spreads popSize individuals over unit-width age buckets
// following a normal distribution with standard deviation ageStd, centered on
// the middle bucket. Buckets whose expected count would round to zero are
// trimmed, so the result covers ages -A..A for the largest A whose bucket still
// holds half an individual.
//
// Two degenerate shapes are returned as-is: when the spread is so wide that even
// the center bucket rounds to zero, every individual gets its own bucket (flat);
// when it is so narrow that no neighbor of the center survives, a single bucket
// holds everyone. Buckets always sum to popSize.
func DiscretizePopulation(popSize uint32, ageStd float64) []uint32 {
	if popSize == 0 {
		return nil
	}
	if ageStd <= 0 || math.IsNaN(ageStd) {
		return []uint32{popSize}
	}

	if bucketCount(popSize, ageStd, 0) < 0.5 {
		flat := make([]uint32, popSize)
		for i := range flat {
			flat[i] = 1
		}
		return flat
	}

	span := 0
	for bucketCount(popSize, ageStd, span+1) >= 0.5 {
		span++
	}
	if span == 0 {
		return []uint32{popSize}
	}

	buckets := make([]uint32, 2*span+1)
	var assigned uint32
	for i := range buckets {
		n := uint32(bucketCount(popSize, ageStd, i-span))
		buckets[i] = n
		assigned += n
	}
	// Truncation leaves a small remainder; it goes to the mode.
	if assigned < popSize {
		buckets[span] += popSize - assigned
	}
	return buckets
}
