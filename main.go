package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/treegro/config"
	"github.com/pthm-cable/treegro/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	backend := flag.String("backend", "", "Cohort pipe backend: exact or approx (empty = use config)")
	workers := flag.Int("workers", -1, "Stand worker goroutines (0 = GOMAXPROCS, -1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Command-line overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *backend != "" {
		cfg.Simulation.Backend = *backend
	}
	if *workers >= 0 {
		cfg.Simulation.Workers = *workers
	}
	if err := cfg.Recompute(); err != nil {
		slog.Error("invalid overrides", "error", err)
		os.Exit(1)
	}

	g, err := game.NewGame(cfg, game.Options{
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"backend", cfg.Derived.Backend.String(),
		"workers", cfg.Derived.Workers,
		"world", cfg.World,
		"max_ticks", *maxTicks,
	)

	start := time.Now()
	runErr := g.Run(ctx, *maxTicks)
	immature, mature, snags := g.Totals()
	slog.Info("simulation stopped",
		"tick", g.Tick(),
		"elapsed", time.Since(start).String(),
		"immature", immature,
		"mature", mature,
		"snags", snags,
	)

	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}
