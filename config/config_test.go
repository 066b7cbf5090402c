package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/treegro/param"
	"github.com/pthm-cable/treegro/pipe"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Derived.NumResources != 4 {
		t.Errorf("NumResources = %d, want 4", cfg.Derived.NumResources)
	}
	if cfg.Derived.NumCells != cfg.World.Width*cfg.World.Height {
		t.Errorf("NumCells = %d, want %d", cfg.Derived.NumCells, cfg.World.Width*cfg.World.Height)
	}
	if cfg.Derived.Backend != pipe.Exact {
		t.Errorf("Backend = %s, want exact", cfg.Derived.Backend)
	}
	if cfg.Derived.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Derived.Workers)
	}
	for _, id := range param.IDs() {
		if _, ok := cfg.Parameters[id.String()]; !ok {
			t.Errorf("defaults missing parameter row %s", id)
		}
	}
}

// Every default period must resolve to at least one tick anywhere in the
// resource cube.
func TestDefaultPeriodsPositive(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	periods := []param.ID{
		param.SeedMaturationPeriod, param.SeedGerminationPeriod, param.PlantMaturationPeriod,
		param.FloweringPeriod, param.FloweringRecoveryPeriod, param.DispersionPeriod,
		param.DispersionRecoveryPeriod, param.MaturePlantLifePeriod, param.SnagDecompositionPeriod,
	}
	n := cfg.Derived.NumResources
	for corner := 0; corner < 1<<n; corner++ {
		levels := make([]float64, n)
		for i := range levels {
			if corner&(1<<i) != 0 {
				levels[i] = 1
			}
		}
		v, err := param.Project(cfg.Derived.Matrix, param.NewResourceVector(levels...))
		if err != nil {
			t.Fatal(err)
		}
		for _, id := range periods {
			got, err := v.Uint(id)
			if err != nil || got < 1 {
				t.Errorf("%s at %v = %d (%v), want >= 1", id, levels, got, err)
			}
		}
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := writeFile(t, `
world:
  width: 8
simulation:
  backend: approx
parameters:
  flowering_period: [0, 0, 0, 0, 7]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 8 {
		t.Errorf("World.Width = %d, want 8", cfg.World.Width)
	}
	if cfg.World.Height != 32 {
		t.Errorf("World.Height = %d, want default 32", cfg.World.Height)
	}
	if cfg.Derived.Backend != pipe.Approx {
		t.Errorf("Backend = %s, want approx", cfg.Derived.Backend)
	}
	if got := cfg.Derived.Matrix.Row(param.FloweringPeriod)[4]; got != 7 {
		t.Errorf("flowering_period offset = %v, want 7", got)
	}
	if got := cfg.Derived.Matrix.Row(param.MaturePlantLifePeriod)[4]; got != 12 {
		t.Errorf("mature_plant_life_period offset = %v, want default 12", got)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend", "simulation:\n  backend: fuzzy\n", "unknown pipe backend"},
		{"row width", "parameters:\n  flowering_period: [1, 2]\n", "flowering_period"},
		{"unknown row", "parameters:\n  bloom_period: [0, 0, 0, 0, 1]\n", "bloom_period"},
		{"bias", "resources:\n  bias: [0.1]\n", "bias"},
		{"world", "world:\n  width: 0\n", "world size"},
		{"window", "telemetry:\n  stats_window: 0\n", "stats_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.Seed = 7
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written): %v", err)
	}
	if back.Simulation.Seed != 7 {
		t.Errorf("Seed = %d, want 7", back.Simulation.Seed)
	}
}

func TestInitAndCfg(t *testing.T) {
	MustInit("")
	if Cfg().World.Width <= 0 {
		t.Errorf("Cfg().World.Width = %d", Cfg().World.Width)
	}
}
