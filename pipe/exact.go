package pipe

import "fmt"

// ExactPipe keeps a per-age ledger. Slot 0 holds the oldest cohort, the last
// slot holds the cohort admitted on the most recent Step.
type ExactPipe struct {
	ages []uint32
}

// NewExact returns an empty exact pipe with a period of 1.
func NewExact() *ExactPipe {
	return &ExactPipe{ages: make([]uint32, 1)}
}

// Loss returns the oldest cohort.
func (p *ExactPipe) Loss() uint32 {
	return p.ages[0]
}

// Pop returns the sum of all cohorts.
func (p *ExactPipe) Pop() uint32 {
	var total uint32
	for _, n := range p.ages {
		total += n
	}
	return total
}

// Step drops the oldest cohort and appends gain as the youngest.
func (p *ExactPipe) Step(gain uint32) {
	copy(p.ages, p.ages[1:])
	p.ages[len(p.ages)-1] = gain
}

// SetPeriod resizes the ledger. Growing inserts empty slots ahead of the
// oldest cohort so no cohort changes age. Shrinking folds every cohort older
// than the new period into the oldest slot, so they all exit on the next Step.
func (p *ExactPipe) SetPeriod(period uint32) error {
	if period == 0 {
		return fmt.Errorf("exact pipe: %w", ErrInvalidPeriod)
	}
	n := int(period)
	cur := len(p.ages)

	switch {
	case n > cur:
		grown := make([]uint32, n)
		copy(grown[n-cur:], p.ages)
		p.ages = grown
	case n < cur:
		excess := cur - n
		var folded uint32
		for _, c := range p.ages[:excess] {
			folded += c
		}
		shrunk := make([]uint32, n)
		copy(shrunk, p.ages[excess:])
		shrunk[0] += folded
		p.ages = shrunk
	}
	return nil
}

// CullPop scales every cohort by 1-fraction, truncating.
func (p *ExactPipe) CullPop(fraction float64) {
	keep := 1 - clampFraction(fraction)
	for i, c := range p.ages {
		p.ages[i] = uint32(float64(c) * keep)
	}
}

// Period returns the number of age slots.
func (p *ExactPipe) Period() uint32 {
	return uint32(len(p.ages))
}

// Cohorts returns a copy of the ledger, oldest first.
func (p *ExactPipe) Cohorts() []uint32 {
	out := make([]uint32, len(p.ages))
	copy(out, p.ages)
	return out
}
