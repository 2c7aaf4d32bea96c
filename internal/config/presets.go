package config

import (
	"sort"

	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/sim"
)

// Preset is a built-in simulation with the step size and duration it is
// meant to be run with.
type Preset struct {
	Name        string
	Description string
	Source      dsl.Source
	Dt          float64
	Duration    float64
}

var Presets = map[string]*Preset{
	"neutralization": {
		Name:        "neutralization",
		Description: "sulfuric acid and sodium hydroxide, more base added at t = 0.5",
		Source: dsl.Source{
			Chemicals: "H2SO4 1.0 #\nNaOH 1.0 #\nNa2SO4\nH2O #",
			Reactions: "H2SO4 + 2 NaOH -> Na2SO4 + 2 H2O ; Kfwd = 6.0 ; Kequ = 5.0e7",
			Additions: "NaOH 1.0 t = 0.5",
		},
		Dt: 0.001, Duration: 1.0,
	},
	"isomerization": {
		Name:        "isomerization",
		Description: "A <-> B relaxing to [B]/[A] = 3",
		Source: dsl.Source{
			Chemicals: "A 1.0 #\nB #",
			Reactions: "A -> B ; Kfwd = 2 ; Kequ = 3",
		},
		Dt: 0.001, Duration: 5.0,
	},
	"dimerization": {
		Name:        "dimerization",
		Description: "2 NO2 <-> N2O4",
		Source: dsl.Source{
			Chemicals: "NO2 1.0 #\nN2O4 #",
			Reactions: "2 NO2 -> N2O4 ; Kfwd = 4 ; Kequ = 8",
		},
		Dt: 0.001, Duration: 3.0,
	},
	"chain": {
		Name:        "chain",
		Description: "A <-> B <-> C with a second dose of A at t = 2",
		Source: dsl.Source{
			Chemicals: "A 1.0 #\nB #\nC #",
			Reactions: "A -> B ; Kfwd = 3 ; Kequ = 10\nB -> C ; Kfwd = 1 ; Kequ = 5",
			Additions: "A 0.5 t = 2",
		},
		Dt: 0.001, Duration: 5.0,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets the config's step size and duration to the preset's.
func (p *Preset) Apply(cfg *Config) {
	cfg.Preset = p.Name
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
}

func (p *Preset) Run() sim.Config {
	return sim.Config{Dt: p.Dt, Duration: p.Duration}
}
