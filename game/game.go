// Package game runs the simulation: a grid of stands on a drifting resource
// field, stepped tick by tick.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/treegro/components"
	"github.com/pthm-cable/treegro/config"
	"github.com/pthm-cable/treegro/lifecycle"
	"github.com/pthm-cable/treegro/param"
	"github.com/pthm-cable/treegro/systems"
	"github.com/pthm-cable/treegro/telemetry"
)

// bookmarkHistory is the number of stats windows the bookmark detector keeps.
const bookmarkHistory = 10

// Options configures a Game beyond what the config file holds.
type Options struct {
	LogStats      bool                        // log stats and perf at every window flush
	OutputDir     string                      // write config.yaml and CSV telemetry here (empty disables)
	StatsCallback func(telemetry.WindowStats) // called with every flushed window
}

// phase is one step of a tick.
type phase struct {
	info systems.SystemInfo
	run  func()
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	// One entity per grid cell
	cellMapper   *ecs.Map3[components.Cell, components.Resources, components.Stand]
	cellFilter   ecs.Filter2[components.Cell, components.Resources]
	censusFilter ecs.Filter2[components.Cell, components.Stand]
	standMap     *ecs.Map[components.Stand]
	cells        []ecs.Entity // indexed y*width+x

	width, height int

	// Systems
	resourceField *systems.ResourceField
	reseeder      *systems.Reseeder
	stands        *systems.StandSystem
	registry      *systems.SystemRegistry
	phases        []phase

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	// State
	tick          int32
	lastReport    systems.StandReport
	failureLogged bool // a failure was logged in the current window
}

// NewGame builds the world described by cfg. Every cell starts with
// Seeding.InitialSeeds immature seeds spread over ages by InitialAgeStd.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()
	w, h := cfg.World.Width, cfg.World.Height

	g := &Game{
		cfg:   cfg,
		world: world,

		cellMapper:   ecs.NewMap3[components.Cell, components.Resources, components.Stand](world),
		cellFilter:   *ecs.NewFilter2[components.Cell, components.Resources](world),
		censusFilter: *ecs.NewFilter2[components.Cell, components.Stand](world),
		standMap:     ecs.NewMap[components.Stand](world),
		cells:        make([]ecs.Entity, w*h),

		width:  w,
		height: h,

		resourceField: systems.NewResourceField(w, h, cfg.Simulation.Seed, cfg),
		reseeder:      systems.NewReseeder(w, h, cfg.Simulation.Seed, cfg),
		stands:        systems.NewStandSystem(world, cfg.Derived.Workers),
		registry:      systems.NewSystemRegistry(),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(bookmarkHistory),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	if err := g.buildPhases(); err != nil {
		return nil, err
	}
	if err := g.spawnStands(); err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	return g, nil
}

// buildPhases binds every registered phase to the code that runs it.
func (g *Game) buildPhases() error {
	runners := map[string]func(){
		telemetry.PhaseResourceField: g.updateResources,
		telemetry.PhaseReseed:        g.reseed,
		telemetry.PhaseStands:        g.updateStands,
		telemetry.PhaseTelemetry:     g.flushTelemetry,
	}
	for _, info := range g.registry.All() {
		run, ok := runners[info.ID]
		if !ok {
			return fmt.Errorf("no runner for phase %q", info.ID)
		}
		g.phases = append(g.phases, phase{info: info, run: run})
	}
	return nil
}

// spawnStands creates one entity per cell with an initial seed cohort.
func (g *Game) spawnStands() error {
	cfg := g.cfg
	numResources := cfg.Derived.NumResources

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			m, err := lifecycle.New(cfg.Derived.Matrix, cfg.Derived.Backend)
			if err != nil {
				return err
			}
			if err := m.SeedCohort(lifecycle.ImmatureSeeds, cfg.Seeding.InitialSeeds, cfg.Seeding.InitialAgeStd); err != nil {
				return fmt.Errorf("seeding cell (%d,%d): %w", x, y, err)
			}

			cell := components.Cell{X: x, Y: y}
			res := components.Resources{Vector: param.NewResourceVector(make([]float64, numResources)...)}
			g.resourceField.Sample(x, y, res.Vector)
			stand := components.Stand{Machine: m}

			g.cells[y*g.width+x] = g.cellMapper.NewEntity(&cell, &res, &stand)
		}
	}
	return nil
}

// Step advances the simulation by one tick and reports the stand pass.
func (g *Game) Step() systems.StandReport {
	g.perfCollector.StartTick()
	g.tick++
	for _, p := range g.phases {
		g.perfCollector.StartPhase(p.info.ID)
		p.run()
	}
	g.perfCollector.EndTick()
	return g.lastReport
}

// Run steps until ctx is done or maxTicks is reached (0 = unlimited).
// It returns ctx.Err() when stopped by the context.
func (g *Game) Run(ctx context.Context, maxTicks int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Step()
		if maxTicks > 0 && int(g.tick) >= maxTicks {
			return nil
		}
	}
}

// updateResources advances the resource field and samples it into every cell.
func (g *Game) updateResources() {
	g.resourceField.Update()

	query := g.cellFilter.Query()
	for query.Next() {
		cell, res := query.Get()
		g.resourceField.Sample(cell.X, cell.Y, res.Vector)
	}
}

// reseed inserts outside seeds when the reseeder is due.
func (g *Game) reseed() {
	batch, ok := g.reseeder.Due(g.tick)
	if !ok {
		return
	}
	stand, ok := g.CellAt(batch.X, batch.Y)
	if !ok || stand.Machine == nil {
		return
	}
	stand.Machine.InsertSeeds(batch.Count)
}

// updateStands steps every stand and records the flows.
func (g *Game) updateStands() {
	rep := g.stands.Update()
	g.lastReport = rep

	g.collector.RecordTick(rep.Flows)
	g.collector.RecordFailures(rep.Failed)

	if rep.Failed > 0 && !g.failureLogged {
		slog.Warn("stand steps failed",
			"tick", g.tick,
			"failed", rep.Failed,
			"error", rep.FirstErr,
		)
		g.failureLogged = true
	}
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Totals returns the world population by group.
func (g *Game) Totals() (immature, mature, snags uint64) {
	query := g.censusFilter.Query()
	for query.Next() {
		_, stand := query.Get()
		if stand.Machine == nil {
			continue
		}
		immature += uint64(stand.Machine.Immature())
		mature += uint64(stand.Machine.Mature())
		snags += uint64(stand.Machine.Snags())
	}
	return immature, mature, snags
}

// CellAt returns the stand growing in cell (x, y).
func (g *Game) CellAt(x, y int) (*components.Stand, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return nil, false
	}
	return g.standMap.Get(g.cells[y*g.width+x]), true
}

// ResourcesAt returns the resource levels last sampled for cell (x, y).
func (g *Game) ResourcesAt(x, y int) ([]float64, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return nil, false
	}
	levels := make([]float64, g.resourceField.N)
	for ch := range levels {
		levels[ch] = g.resourceField.Level(x, y, ch)
	}
	return levels, true
}

// Close stops the worker pool and closes output files.
func (g *Game) Close() error {
	g.stands.Stop()
	return g.outputManager.Close()
}
