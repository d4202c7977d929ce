package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/physics"
	"github.com/san-kum/shapesim/internal/shaping"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultMaxAccel    = 1.0
	DefaultMaxVel      = 1.0
	DefaultStartTime   = 0.5
	DefaultDistance    = 1.0
	DefaultMinDistance = 1.0
	DefaultMaxDistance = 5.0
	DefaultSamples     = 801
	DefaultIntegrator  = "rk45"
	DefaultDataDir     = ".shapesim"

	// CustomShaper selects the explicit impulse list instead of a designed shaper.
	CustomShaper = "custom"
)

type Config struct {
	System  physics.SystemParams `yaml:"system" json:"system"`
	Move    command.Move         `yaml:"move" json:"move"`
	Shaper  ShaperConfig         `yaml:"shaper" json:"shaper"`
	Grid    GridConfig           `yaml:"grid" json:"grid"`
	Solver  SolverConfig         `yaml:"solver" json:"solver"`
	Sweep   SweepConfig          `yaml:"sweep" json:"sweep"`
	DataDir string               `yaml:"data_dir" json:"data_dir"`
}

type ShaperConfig struct {
	Type string `yaml:"type" json:"type"`
	// Frequency in Hz; zero tunes to the flexible mode of the system.
	Frequency float64                 `yaml:"frequency" json:"frequency"`
	Damping   float64                 `yaml:"damping" json:"damping"`
	Impulses  []command.ShaperImpulse `yaml:"impulses,omitempty" json:"impulses,omitempty"`
}

type GridConfig struct {
	Duration float64 `yaml:"duration" json:"duration"`
	Dt       float64 `yaml:"dt" json:"dt"`
}

type SolverConfig struct {
	Integrator          string `yaml:"integrator" json:"integrator"`
	integrators.Options `yaml:",inline"`
}

type SweepConfig struct {
	MinDistance           float64 `yaml:"min_distance" json:"min_distance"`
	MaxDistance           float64 `yaml:"max_distance" json:"max_distance"`
	Samples               int     `yaml:"samples" json:"samples"`
	Workers               int     `yaml:"workers" json:"workers"`
	IncludeShaperDuration bool    `yaml:"include_shaper_duration" json:"include_shaper_duration"`
}

func DefaultConfig() *Config {
	return &Config{
		System: physics.DefaultParams(),
		Move: command.Move{
			Distance:  DefaultDistance,
			StartTime: DefaultStartTime,
			Limits:    command.MotionLimits{MaxAccel: DefaultMaxAccel, MaxVel: DefaultMaxVel},
		},
		Shaper: ShaperConfig{Type: string(shaping.None)},
		Grid:   GridConfig{Duration: DefaultDuration, Dt: DefaultDt},
		Solver: SolverConfig{
			Integrator: DefaultIntegrator,
			Options:    integrators.DefaultOptions(),
		},
		Sweep: SweepConfig{
			MinDistance: DefaultMinDistance,
			MaxDistance: DefaultMaxDistance,
			Samples:     DefaultSamples,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a YAML file over base.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	if c.Shaper.Impulses != nil {
		out.Shaper.Impulses = append([]command.ShaperImpulse(nil), c.Shaper.Impulses...)
	}
	return &out
}

func (c *Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	if err := c.Move.Validate(); err != nil {
		return fmt.Errorf("move: %w", err)
	}
	if err := c.Shaper.Validate(); err != nil {
		return fmt.Errorf("shaper: %w", err)
	}
	if !(c.Grid.Dt > 0) || !(c.Grid.Duration > 0) {
		return fmt.Errorf("grid: %w", dynamo.InvalidParameter("duration and dt must be positive, got %g and %g", c.Grid.Duration, c.Grid.Dt))
	}
	if _, err := integrators.New(c.Solver.Integrator); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Solver.Options.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	return nil
}

func (s ShaperConfig) Validate() error {
	if s.Type == CustomShaper {
		if len(s.Impulses) == 0 {
			return dynamo.InvalidParameter("custom shaper needs impulses")
		}
		return command.Shaper(s.Impulses).Validate()
	}
	if len(s.Impulses) > 0 {
		return dynamo.InvalidParameter("impulses are only used with type %q", CustomShaper)
	}
	if _, err := shaping.ParseType(s.Type); err != nil {
		return err
	}
	if s.Frequency < 0 {
		return dynamo.InvalidParameter("frequency must not be negative, got %g", s.Frequency)
	}
	return nil
}

// Shaped reports whether the configuration asks for any shaping.
func (s ShaperConfig) Shaped() bool {
	if s.Type == CustomShaper {
		return true
	}
	t, err := shaping.ParseType(s.Type)
	return err == nil && t != shaping.None
}

func (s SweepConfig) Validate() error {
	if s.Samples < 1 {
		return dynamo.InvalidParameter("samples must be at least 1, got %d", s.Samples)
	}
	if !(s.MinDistance >= 0) || !(s.MaxDistance >= s.MinDistance) {
		return dynamo.InvalidParameter("invalid distance range [%g, %g]", s.MinDistance, s.MaxDistance)
	}
	if s.Workers < 0 {
		return dynamo.InvalidParameter("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

func (c *Config) Tolerances() dynamo.Tolerances {
	return c.Solver.Tol
}
