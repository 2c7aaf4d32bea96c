package experiment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/config"
	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/metrics"
	"github.com/san-kum/rxnsim/internal/sim"
)

type Config struct {
	Name     string
	Source   dsl.Source
	Dt       float64
	Duration float64
	Settle   float64
}

func (c Config) Run() sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration}
}

// FromConfig resolves the simulation named by cfg: the file at
// cfg.Simulation when set, the preset otherwise.
func FromConfig(cfg *config.Config) (Config, error) {
	exp := Config{Dt: cfg.Dt, Duration: cfg.Duration, Settle: cfg.Settle}

	if cfg.Simulation != "" {
		src, err := dsl.LoadFile(cfg.Simulation)
		if err != nil {
			return Config{}, err
		}
		exp.Name = strings.TrimSuffix(filepath.Base(cfg.Simulation), filepath.Ext(cfg.Simulation))
		exp.Source = src
		return exp, nil
	}

	p := config.GetPreset(cfg.Preset)
	if p == nil {
		return Config{}, fmt.Errorf("unknown preset: %s", cfg.Preset)
	}
	exp.Name = p.Name
	exp.Source = p.Source
	return exp, nil
}

// Experiment is a parsed simulation ready to be run any number of times.
type Experiment struct {
	cfg     Config
	model   *dsl.Model
	tracked []chem.Chemical
}

func New(cfg Config) (*Experiment, error) {
	if err := cfg.Run().Validate(); err != nil {
		return nil, err
	}
	model, err := dsl.ParseSource(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, err)
	}

	tracked := model.TrackedChemicals()
	if len(tracked) == 0 {
		tracked = model.Registry.Chemicals()
	}
	return &Experiment{cfg: cfg, model: model, tracked: tracked}, nil
}

func (e *Experiment) Config() Config                       { return e.cfg }
func (e *Experiment) Model() *dsl.Model                    { return e.model }
func (e *Experiment) Tracked() []chem.Chemical             { return e.tracked }
func (e *Experiment) Simulation() (*sim.Simulation, error) { return e.model.Simulation() }

// Metrics returns a fresh set of the standard metrics for s.
func (e *Experiment) Metrics(s *sim.Simulation) []sim.Metric {
	settle := e.cfg.Settle
	if settle <= 0 {
		settle = config.DefaultSettle
	}
	return metrics.Standard(s, e.tracked, settle)
}

// Run steps a fresh simulation over the configured duration, sampling the
// tracked chemicals (every chemical when none is marked).
func (e *Experiment) Run(ctx context.Context, observers ...sim.Observer) (*sim.Result, error) {
	s, err := e.Simulation()
	if err != nil {
		return nil, err
	}

	runner := sim.NewRunner(s, e.tracked...)
	for _, m := range e.Metrics(s) {
		runner.AddMetric(m)
	}
	for _, o := range observers {
		runner.AddObserver(o)
	}
	return runner.Run(ctx, e.cfg.Run())
}
