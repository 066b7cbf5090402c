// Package lifecycle composes cohort pipes into the plant life cycle:
// seeds mature and germinate, plants mature, flower, disperse seeds, recover,
// die and decompose as snags.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/treegro/distrib"
	"github.com/pthm-cable/treegro/param"
	"github.com/pthm-cable/treegro/pipe"
)

// ErrStageOccupied is returned when seeding a stage that already holds a population.
var ErrStageOccupied = errors.New("stage already populated")

// TickReport summarizes the flows of the most recent Step.
type TickReport struct {
	InsertedSeeds  uint32
	DispersedSeeds uint32
	Germinated     uint32
	NewlyMature    uint32
	Deaths         uint32
	Decomposed     uint32
	Mortality      float64
}

// Machine tracks one plant population through its life cycle. A Machine is
// not safe for concurrent use; distinct machines share nothing and may be
// stepped in parallel.
type Machine struct {
	matrix *param.Matrix
	pipes  [numStages]pipe.CohortPipe

	dormant  uint32
	ready    uint32
	inserted uint32

	admitted uint64
	removed  uint64

	ledger tickLedger
	last   TickReport
}

// New returns an empty machine whose pipes use the given backend. matrix is
// used by Step to turn resource vectors into parameters; it is only read.
func New(matrix *param.Matrix, backend pipe.Backend) (*Machine, error) {
	m := &Machine{matrix: matrix}
	for _, s := range pipeStages {
		p, err := pipe.New(backend)
		if err != nil {
			return nil, fmt.Errorf("creating %s pipe: %w", s, err)
		}
		m.pipes[s] = p
	}
	return m, nil
}

// InsertSeeds queues externally supplied seeds for admission on the next Step.
func (m *Machine) InsertSeeds(n uint32) {
	m.inserted += n
}

// Step projects rv through the machine's matrix and advances one tick.
func (m *Machine) Step(rv param.ResourceVector) error {
	if m.matrix == nil {
		return errors.New("lifecycle: machine has no parameter matrix")
	}
	p, err := param.Project(m.matrix, rv)
	if err != nil {
		return fmt.Errorf("projecting resources: %w", err)
	}
	return m.StepParams(p)
}

type snapshot struct {
	loss [numStages]uint32
	pop  [numStages]uint32
}

// StepParams advances one tick with already-resolved parameters. If a period
// cannot be resolved the tick is aborted before anything changes.
func (m *Machine) StepParams(p param.Vector) error {
	var periods [numStages]uint32
	for _, s := range pipeStages {
		id := periodOf[s]
		n, err := p.Uint(id)
		if err != nil {
			return fmt.Errorf("resolving %s period: %w", s, err)
		}
		if n == 0 {
			return fmt.Errorf("resolving %s period: %s = %v: %w", s, id, p.Float(id), pipe.ErrInvalidPeriod)
		}
		periods[s] = n
	}
	for _, s := range pipeStages {
		if err := m.pipes[s].SetPeriod(periods[s]); err != nil {
			return fmt.Errorf("setting %s period: %w", s, err)
		}
	}

	// Every read below comes from this snapshot.
	var snap snapshot
	for _, s := range pipeStages {
		snap.loss[s] = m.pipes[s].Loss()
		snap.pop[s] = m.pipes[s].Pop()
	}

	l := &m.ledger
	l.reset()
	l.putCount(flowMaturedSeeds, snap.loss[ImmatureSeeds])
	l.putCount(flowGerminated, snap.loss[MatureSeeds])
	l.putCount(flowNewlyMature, snap.loss[ImmaturePlants])
	l.putCount(flowDeaths, snap.loss[MaturePlants])
	l.putCount(flowDecomposed, snap.loss[Snags])
	l.putCount(flowFloweringDone, snap.loss[FloweringPlants])
	l.putCount(flowFlowerRecovered, snap.loss[FlowerRecoveringPlants])
	l.putCount(flowDispersalDone, snap.loss[DispersingPlants])
	l.putCount(flowDisperseRecovered, snap.loss[DisperseRecoveringPlants])
	l.putCount(flowInsertedSeeds, m.inserted)

	var mortality float64
	if snap.pop[MaturePlants] > 0 {
		mortality = float64(snap.loss[MaturePlants]) / float64(snap.pop[MaturePlants])
	}
	l.put(flowMortality, mortality)

	rate := p.Float(param.DispersionRate)
	if rate < 0 {
		rate = 0
	}
	l.putCount(flowDispersedSeeds, uint32(float64(snap.pop[DispersingPlants])*rate))

	var report TickReport

	// Plants in reproductive states die along with the mature population.
	f := l.take(flowMortality)
	for _, s := range culledStages {
		m.pipes[s].CullPop(f)
	}
	m.ready = uint32(float64(m.ready) * (1 - f))
	report.Mortality = f

	report.Deaths = l.count(flowDeaths)
	m.pipes[Snags].Step(report.Deaths)
	report.Decomposed = l.count(flowDecomposed)
	m.removed += uint64(report.Decomposed)

	report.DispersedSeeds = l.count(flowDispersedSeeds)
	report.InsertedSeeds = l.count(flowInsertedSeeds)
	m.pipes[ImmatureSeeds].Step(report.DispersedSeeds + report.InsertedSeeds)
	m.admitted += uint64(report.DispersedSeeds) + uint64(report.InsertedSeeds)
	m.inserted = 0

	matured := l.count(flowMaturedSeeds)
	if p.Float(param.SeedGerminationConditions) < 0 {
		m.dormant += matured
		m.pipes[MatureSeeds].Step(0)
	} else {
		m.pipes[MatureSeeds].Step(matured + m.dormant)
		m.dormant = 0
	}

	report.Germinated = l.count(flowGerminated)
	m.pipes[ImmaturePlants].Step(report.Germinated)

	report.NewlyMature = l.count(flowNewlyMature)
	m.pipes[MaturePlants].Step(report.NewlyMature)
	m.ready += report.NewlyMature

	l.putCount(flowRecovered, l.count(flowFlowerRecovered)+l.count(flowDisperseRecovered))
	m.ready += l.count(flowRecovered)

	if p.Float(param.FloweringConditions) < 0 {
		m.pipes[FloweringPlants].Step(0)
	} else {
		m.pipes[FloweringPlants].Step(m.ready)
		m.ready = 0
	}

	done := l.count(flowFloweringDone)
	success := uint32(float64(done) * clampUnit(p.Float(param.FloweringSuccessRatio)))
	l.putCount(flowFlowerSuccess, success)
	l.putCount(flowFlowerFailure, done-success)
	m.pipes[DispersingPlants].Step(l.count(flowFlowerSuccess))
	m.pipes[FlowerRecoveringPlants].Step(l.count(flowFlowerFailure))

	m.pipes[DisperseRecoveringPlants].Step(l.count(flowDispersalDone))

	m.last = report
	return l.check()
}

// SeedCohort loads popSize individuals into an empty counted stage, spread over
// ages by a discretized normal distribution with the given standard deviation.
// The stage's period is widened to hold every age bucket; the next Step
// re-derives it from parameters. Seeded mature plants are ready to flower.
func (m *Machine) SeedCohort(s Stage, popSize uint32, ageStd float64) error {
	if !s.isPipe() || !s.counted() {
		return fmt.Errorf("seeding %s: stage has no age structure", s)
	}
	p := m.pipes[s]
	if p.Pop() != 0 {
		return fmt.Errorf("seeding %s: %w", s, ErrStageOccupied)
	}
	buckets := distrib.DiscretizePopulation(popSize, ageStd)
	if len(buckets) == 0 {
		return nil
	}
	if err := p.SetPeriod(uint32(len(buckets))); err != nil {
		return fmt.Errorf("seeding %s: %w", s, err)
	}
	for _, n := range buckets {
		p.Step(n)
	}
	m.admitted += uint64(p.Pop())
	if s == MaturePlants {
		m.ready += p.Pop()
	}
	return nil
}

// Stage returns the population of one stage.
func (m *Machine) Stage(s Stage) uint32 {
	switch s {
	case DormantSeeds:
		return m.dormant
	case ReadyToFlower:
		return m.ready
	}
	if s.isPipe() {
		return m.pipes[s].Pop()
	}
	return 0
}

// Immature returns seeds in every stage plus immature plants.
func (m *Machine) Immature() uint32 {
	return m.Stage(ImmatureSeeds) + m.Stage(MatureSeeds) + m.dormant + m.Stage(ImmaturePlants)
}

// Mature returns the mature plant population.
func (m *Machine) Mature() uint32 {
	return m.Stage(MaturePlants)
}

// Snags returns the standing dead population.
func (m *Machine) Snags() uint32 {
	return m.Stage(Snags)
}

// Total returns every individual tracked by the machine.
func (m *Machine) Total() uint32 {
	return m.Immature() + m.Mature() + m.Snags()
}

// Admitted returns the number of individuals that have entered the machine.
func (m *Machine) Admitted() uint64 {
	return m.admitted
}

// Removed returns the number of snags that finished decomposing.
func (m *Machine) Removed() uint64 {
	return m.removed
}

// PendingSeeds returns inserted seeds waiting for the next Step.
func (m *Machine) PendingSeeds() uint32 {
	return m.inserted
}

// LastTick reports the flows of the most recent Step.
func (m *Machine) LastTick() TickReport {
	return m.last
}

func clampUnit(x float64) float64 {
	if x <= 0 || x != x {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
