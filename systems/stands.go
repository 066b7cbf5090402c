package systems

import (
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/treegro/components"
	"github.com/pthm-cable/treegro/lifecycle"
	"github.com/pthm-cable/treegro/param"
)

// parallelThreshold is the minimum stand count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// standJob captures what a worker needs to step one stand.
type standJob struct {
	Entity  ecs.Entity
	Machine *lifecycle.Machine
	Vector  param.ResourceVector
}

// standResult captures the outcome of one step, applied after the parallel phase.
type standResult struct {
	Err    error
	Report lifecycle.TickReport
}

// workChunk represents a range of stands for a worker to process.
type workChunk struct {
	start, end int
}

// StandReport summarizes one pass over every stand.
type StandReport struct {
	Stepped  int
	Failed   int
	FirstErr error                // first failure in entity order
	Flows    lifecycle.TickReport // flows summed over successful steps; Mortality is unused
}

// StandSystem steps every stand's life-cycle machine once per tick. Machines
// share nothing, so they are stepped on a persistent worker pool; results are
// applied in entity order so the outcome does not depend on the worker count.
type StandSystem struct {
	filter   ecs.Filter2[components.Resources, components.Stand]
	standMap *ecs.Map[components.Stand]

	jobs       []standJob
	results    []standResult
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewStandSystem creates a stand system using numWorkers goroutines.
func NewStandSystem(w *ecs.World, numWorkers int) *StandSystem {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &StandSystem{
		filter:     *ecs.NewFilter2[components.Resources, components.Stand](w),
		standMap:   ecs.NewMap[components.Stand](w),
		numWorkers: numWorkers,
		jobs:       make([]standJob, 0, 1024),
		results:    make([]standResult, 0, 1024),
	}
}

// Update steps every stand with its cell's current resource levels.
func (s *StandSystem) Update() StandReport {
	// Phase A: Build jobs (single-threaded)
	s.jobs = s.jobs[:0]
	query := s.filter.Query()
	for query.Next() {
		res, stand := query.Get()
		if stand.Machine == nil {
			continue
		}
		s.jobs = append(s.jobs, standJob{
			Entity:  query.Entity(),
			Machine: stand.Machine,
			Vector:  res.Vector,
		})
	}

	n := len(s.jobs)
	if n == 0 {
		return StandReport{}
	}
	if cap(s.results) < n {
		s.results = make([]standResult, n)
	}
	s.results = s.results[:n]

	// Phase B: Compute - choose single or parallel based on stand count
	if n < parallelThreshold || s.numWorkers == 1 {
		s.computeChunk(0, n)
	} else {
		s.computeParallel(n)
	}

	// Phase C: Apply results (single-threaded, preserves determinism)
	return s.applyResults()
}

// computeChunk steps a range of stands.
func (s *StandSystem) computeChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		job := &s.jobs[i]
		res := &s.results[i]
		res.Err = job.Machine.Step(job.Vector)
		if res.Err != nil {
			res.Report = lifecycle.TickReport{}
			continue
		}
		res.Report = job.Machine.LastTick()
	}
}

// computeParallel dispatches work to the worker pool.
func (s *StandSystem) computeParallel(n int) {
	if !s.running {
		s.startWorkers()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers

	chunksDispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-s.doneChan
	}
}

// applyResults writes step outcomes back to the stand components.
func (s *StandSystem) applyResults() StandReport {
	var rep StandReport
	for i, job := range s.jobs {
		res := &s.results[i]
		stand := s.standMap.Get(job.Entity)
		if stand == nil {
			continue
		}
		rep.Stepped++

		if res.Err != nil {
			stand.Failures++
			stand.LastErr = res.Err
			rep.Failed++
			if rep.FirstErr == nil {
				rep.FirstErr = res.Err
			}
			continue
		}
		stand.LastErr = nil

		f := &rep.Flows
		f.InsertedSeeds += res.Report.InsertedSeeds
		f.DispersedSeeds += res.Report.DispersedSeeds
		f.Germinated += res.Report.Germinated
		f.NewlyMature += res.Report.NewlyMature
		f.Deaths += res.Report.Deaths
		f.Decomposed += res.Report.Decomposed
	}
	return rep
}

// startWorkers launches persistent worker goroutines.
func (s *StandSystem) startWorkers() {
	if s.running {
		return
	}

	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan struct{}, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// worker runs in a goroutine, processing chunks until stopped.
func (s *StandSystem) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end)
			s.doneChan <- struct{}{}
		}
	}
}

// Stop signals all workers to exit and waits for them. The system restarts
// its workers if Update is called again.
func (s *StandSystem) Stop() {
	if !s.running {
		return
	}

	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}
