// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/treegro/param"
	"github.com/pthm-cable/treegro/pipe"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig          `yaml:"world"`
	Simulation SimulationConfig     `yaml:"simulation"`
	Resources  ResourcesConfig      `yaml:"resources"`
	Parameters map[string][]float64 `yaml:"parameters"`
	Seeding    SeedingConfig        `yaml:"seeding"`
	Telemetry  TelemetryConfig      `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions in cells.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SimulationConfig selects how stands are stepped.
type SimulationConfig struct {
	Backend string `yaml:"backend"` // exact | approx
	Workers int    `yaml:"workers"` // 0 = GOMAXPROCS
	Seed    int64  `yaml:"seed"`
}

// ResourcesConfig holds resource field parameters. Every channel is an
// independent noise layer; the parameter matrix has one column per channel.
type ResourcesConfig struct {
	Channels   []string  `yaml:"channels"`
	Scale      float64   `yaml:"scale"`       // Base noise frequency (cycles across the grid)
	Octaves    int       `yaml:"octaves"`     // FBM octaves
	Lacunarity float64   `yaml:"lacunarity"`  // Frequency multiplier per octave
	Gain       float64   `yaml:"gain"`        // Amplitude multiplier per octave
	TimeSpeed  float64   `yaml:"time_speed"`  // Noise drift per tick (0 = static)
	RegrowRate float64   `yaml:"regrow_rate"` // Fraction of the gap to capacity closed per tick
	Diffuse    float64   `yaml:"diffuse"`     // Diffusion strength per tick (0 disables)
	Bias       []float64 `yaml:"bias"`        // Per-channel offset added to capacity
}

// SeedingConfig holds initial and recurring seed supply.
type SeedingConfig struct {
	InitialSeeds   uint32  `yaml:"initial_seeds"`
	InitialAgeStd  float64 `yaml:"initial_age_std"`
	ReseedInterval int     `yaml:"reseed_interval"` // ticks between reseeds (0 disables)
	ReseedCount    uint32  `yaml:"reseed_count"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // ticks in the rolling perf window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumResources int           // len(Resources.Channels)
	NumCells     int           // World.Width * World.Height
	Workers      int           // Simulation.Workers, or GOMAXPROCS when 0
	Backend      pipe.Backend  // parsed Simulation.Backend
	Matrix       *param.Matrix // Parameters as a projection matrix
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Parameter rows present
// in the file replace the matching default rows; other rows are kept.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// merge unmarshals data over the current values.
func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Recompute re-derives computed values after fields were changed in code,
// for example by command-line overrides.
func (c *Config) Recompute() error {
	if err := c.computeDerived(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// computeDerived validates the loaded values and calculates derived ones.
func (c *Config) computeDerived() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height))
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, fmt.Errorf("simulation.workers = %d must not be negative", c.Simulation.Workers))
	}
	if len(c.Resources.Channels) == 0 {
		errs = append(errs, errors.New("resources.channels is empty"))
	}
	if n := len(c.Resources.Bias); n != 0 && n != len(c.Resources.Channels) {
		errs = append(errs, fmt.Errorf("resources.bias has %d entries for %d channels", n, len(c.Resources.Channels)))
	}
	if c.Resources.Octaves < 1 {
		errs = append(errs, fmt.Errorf("resources.octaves = %d must be at least 1", c.Resources.Octaves))
	}
	if c.Telemetry.StatsWindow <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.stats_window = %d must be positive", c.Telemetry.StatsWindow))
	}
	if c.Telemetry.PerfWindow <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.perf_window = %d must be positive", c.Telemetry.PerfWindow))
	}

	backend, err := pipe.ParseBackend(c.Simulation.Backend)
	if err != nil {
		errs = append(errs, err)
	}
	matrix, err := param.MatrixFromRows(c.Parameters, len(c.Resources.Channels))
	if err != nil {
		errs = append(errs, fmt.Errorf("parameters: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Derived.NumResources = len(c.Resources.Channels)
	c.Derived.NumCells = c.World.Width * c.World.Height
	c.Derived.Workers = c.Simulation.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
	c.Derived.Backend = backend
	c.Derived.Matrix = matrix
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
