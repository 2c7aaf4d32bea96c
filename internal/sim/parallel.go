package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/rxnsim/internal/chem"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent clones of one simulation, one per config.
type Ensemble struct {
	base    *Simulation
	tracked []chem.Chemical
	metrics func() []Metric
	workers int
}

func NewEnsemble(base *Simulation, tracked ...chem.Chemical) *Ensemble {
	return &Ensemble{
		base:    base,
		tracked: tracked,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers bounds the number of clones stepping at once. n <= 0 keeps
// the default of GOMAXPROCS.
func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// WithMetrics installs a factory called once per clone, since metrics hold
// per-run state.
func (e *Ensemble) WithMetrics(factory func() []Metric) {
	e.metrics = factory
}

// Run returns results in the order of cfgs. The first failure cancels the
// remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfgs []Config) ([]*Result, error) {
	for _, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, cfg := range cfgs {
		g.Go(func() error {
			runner := NewRunner(e.base.Clone(), e.tracked...)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					runner.AddMetric(m)
				}
			}

			res, err := runner.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Sweep runs a clone of s for each config with at most workers running at
// once; workers <= 0 means GOMAXPROCS.
func Sweep(ctx context.Context, s *Simulation, tracked []chem.Chemical, cfgs []Config, workers int) ([]*Result, error) {
	e := NewEnsemble(s, tracked...)
	e.SetWorkers(workers)
	return e.Run(ctx, cfgs)
}
