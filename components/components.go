// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/treegro/lifecycle"
	"github.com/pthm-cable/treegro/param"
)

// Cell is a grid location. Every stand entity has exactly one.
type Cell struct {
	X, Y int
}

// Resources holds the resource levels last sampled for a cell.
type Resources struct {
	Vector param.ResourceVector
}

// Stand is the plant population growing in one cell.
type Stand struct {
	Machine *lifecycle.Machine

	Failures int   // steps that returned an error
	LastErr  error // most recent step error, nil after a good step
}

// Total returns the number of individuals in the stand.
func (s *Stand) Total() uint32 {
	if s.Machine == nil {
		return 0
	}
	return s.Machine.Total()
}
