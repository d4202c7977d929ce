package config

import (
	"sort"

	"github.com/san-kum/shapesim/internal/shaping"
)

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"reference": {
		Description: "m1=m2=1, k=10, a=v=1, start 0.5s; 801 distances over [1, 5] on a 10s grid",
		apply:       func(*Config) {},
	},
	"quick": {
		Description: "reference plant with 41 distances and looser tolerances",
		apply: func(c *Config) {
			c.Sweep.Samples = 41
			c.Solver.Tol.Abs = 1e-6
			c.Solver.Tol.Rel = 1e-4
		},
	},
	"zv": {
		Description: "reference sweep with a ZV shaper tuned to the flexible mode",
		apply:       shaped(shaping.ZV),
	},
	"zvd": {
		Description: "reference sweep with a ZVD shaper tuned to the flexible mode",
		apply:       shaped(shaping.ZVD),
	},
	"ei": {
		Description: "reference sweep with an EI shaper tuned to the flexible mode",
		apply:       shaped(shaping.EI),
	},
}

func shaped(t shaping.Type) func(*Config) {
	return func(c *Config) {
		c.Shaper = ShaperConfig{Type: string(t)}
		c.Sweep.IncludeShaperDuration = true
	}
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
