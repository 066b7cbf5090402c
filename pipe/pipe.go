// Package pipe tracks age-structured sub-populations. A pipe admits new
// individuals at age zero and releases each cohort once it has lived for the
// pipe's period.
package pipe

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriod is returned when a pipe is asked to hold cohorts for zero ticks.
var ErrInvalidPeriod = errors.New("period must be at least 1")

// CohortPipe is an age-structured population tracker.
type CohortPipe interface {
	// Loss returns the population that exits on the next Step.
	Loss() uint32
	// Pop returns the total tracked population.
	Pop() uint32
	// Step advances one tick: removes Loss() and admits gain at age zero.
	// Call at most once per tick.
	Step(gain uint32)
	// SetPeriod changes the lifespan of every cohort in the pipe.
	SetPeriod(period uint32) error
	// CullPop removes fraction of the population uniformly across ages.
	CullPop(fraction float64)
}

// Backend selects a CohortPipe implementation.
type Backend uint8

const (
	// Exact keeps one counter per age.
	Exact Backend = iota
	// Approx keeps population, mean age and age variance only.
	Approx
)

// String returns the config name of the backend.
func (b Backend) String() string {
	switch b {
	case Exact:
		return "exact"
	case Approx:
		return "approx"
	default:
		return fmt.Sprintf("backend(%d)", uint8(b))
	}
}

// ParseBackend converts a config name into a Backend.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "exact", "":
		return Exact, nil
	case "approx":
		return Approx, nil
	default:
		return 0, fmt.Errorf("unknown pipe backend %q (want exact or approx)", name)
	}
}

// New returns an empty pipe of the given backend with a period of 1.
func New(b Backend) (CohortPipe, error) {
	switch b {
	case Exact:
		return NewExact(), nil
	case Approx:
		return NewApprox(), nil
	default:
		return nil, fmt.Errorf("creating pipe: unknown backend %s", b)
	}
}

// clampFraction limits a cull fraction to [0,1].
func clampFraction(f float64) float64 {
	if f <= 0 || f != f {
		return 0
	}
	if f >= 1 {
		return 1
	}
	return f
}
