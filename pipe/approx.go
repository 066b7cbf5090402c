package pipe

import (
	"fmt"
	"math"

	"github.com/pthm-cable/treegro/distrib"
)

// VarianceEpsilon is the age variance below which a pipe is treated as a single
// cohort: it releases everything once the mean age reaches the period and
// nothing before. Matches float32 machine epsilon.
const VarianceEpsilon = 1.1920929e-7

// ApproxPipe summarizes the age distribution by its first two moments. Memory
// and every operation are O(1); the price is drift from the exact ledger for
// small, bimodal, or freshly admitted populations.
type ApproxPipe struct {
	// period is the configured period minus one: cohorts exit once their age
	// reaches it, which lines up with the exact ledger where a cohort admitted
	// on Step exits period-1 Steps later.
	period   uint32
	pop      uint32
	mean     float64
	variance float64
}

// NewApprox returns an empty approximate pipe with a period of 1.
func NewApprox() *ApproxPipe {
	return &ApproxPipe{}
}

// lossFraction estimates P(age >= period).
func (p *ApproxPipe) lossFraction() float64 {
	if p.variance < VarianceEpsilon {
		if p.mean >= float64(p.period) {
			return 1
		}
		return 0
	}
	return distrib.SmoothstepTail(p.mean, math.Sqrt(p.variance), float64(p.period))
}

// Loss returns the estimated exiting population, never more than Pop.
func (p *ApproxPipe) Loss() uint32 {
	loss := math.Round(float64(p.pop) * p.lossFraction())
	if loss <= 0 {
		return 0
	}
	if loss >= float64(p.pop) {
		return p.pop
	}
	return uint32(loss)
}

// Pop returns the tracked population.
func (p *ApproxPipe) Pop() uint32 {
	return p.pop
}

// retainedMean is the mean age of the population that survives this tick,
// assuming the lost part sat exactly at the period.
func (p *ApproxPipe) retainedMean(loss uint32) float64 {
	survivors := p.pop - loss
	if survivors == 0 {
		return 0
	}
	return (float64(p.pop)*p.mean - float64(loss)*float64(p.period)) / float64(survivors)
}

// Step removes Loss, ages the survivors by one tick and admits gain at age 0.
// The new moments combine three variance terms: the spread leaving with the
// lost part, the shift of the survivors onto the blended mean, and the
// admissions sitting at age zero.
func (p *ApproxPipe) Step(gain uint32) {
	loss := p.Loss()
	survivors := p.pop - loss
	next := survivors + gain
	if next == 0 {
		p.pop, p.mean, p.variance = 0, 0, 0
		return
	}

	s := float64(survivors)
	n := float64(next)
	nextMean := s * (p.mean + 1) / n

	d := float64(p.period) - p.mean
	lossVar := float64(loss) * d * d
	shiftVar := s * (nextMean - 1 - p.mean) * (nextMean - 1 + p.mean - 2*p.retainedMean(loss))
	gainVar := float64(gain) * nextMean * nextMean

	nextVar := p.variance + (gainVar+shiftVar-lossVar)/n
	if nextVar < 0 {
		nextVar = 0
	}

	p.pop = next
	p.mean = nextMean
	p.variance = nextVar
}

// SetPeriod stores period-1 as the exit age.
func (p *ApproxPipe) SetPeriod(period uint32) error {
	if period == 0 {
		return fmt.Errorf("approx pipe: %w", ErrInvalidPeriod)
	}
	p.period = period - 1
	return nil
}

// CullPop scales the population by 1-fraction. Mean age is kept; variance is
// scaled by the inverse survival ratio. Culling to zero resets both moments.
func (p *ApproxPipe) CullPop(fraction float64) {
	next := uint32(float64(p.pop) * (1 - clampFraction(fraction)))
	if next == 0 {
		p.pop, p.mean, p.variance = 0, 0, 0
		return
	}
	p.variance = p.variance * float64(p.pop) / float64(next)
	p.pop = next
}

// Moments returns the mean age and age variance.
func (p *ApproxPipe) Moments() (mean, variance float64) {
	return p.mean, p.variance
}
