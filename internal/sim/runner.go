package sim

import (
	"context"

	"github.com/san-kum/rxnsim/internal/chem"
)

// sampleCapacity caps the sample slices allocated up front.
const sampleCapacity = 1 << 16

// Runner drives a Simulation from its current time over a fixed duration
// and samples the tracked chemicals after every step.
type Runner struct {
	sim       *Simulation
	tracked   []chem.Chemical
	metrics   []Metric
	observers []Observer
}

// NewRunner samples the given chemicals; with none given every chemical in
// the simulation is sampled.
func NewRunner(s *Simulation, tracked ...chem.Chemical) *Runner {
	if len(tracked) == 0 {
		tracked = s.Chemicals()
	}
	return &Runner{
		sim:       s,
		tracked:   tracked,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Simulation() *Simulation { return r.sim }

// Run records a sample at the starting time and one after each of
// cfg.Steps() steps. Metrics observe every sample; observers only the
// post-step states. On cancellation the partial result is returned with
// the context error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	capacity := min(steps+1, sampleCapacity)
	result := &Result{
		Times:   make([]float64, 0, capacity),
		Series:  make([]Series, len(r.tracked)),
		Metrics: make(map[string]float64),
	}
	for i, c := range r.tracked {
		result.Series[i] = Series{Name: c.Name(), Values: make([]float64, 0, capacity)}
	}

	for _, m := range r.metrics {
		m.Reset()
		m.Observe(r.sim.conc, r.sim.Elapsed())
	}

	r.sample(result)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := r.sim.Step(cfg.Dt); err != nil {
			r.collect(result)
			return result, &StepError{Step: i, Time: r.sim.Elapsed(), Wrapped: err}
		}
		result.StepsTaken++

		x, t := r.sim.conc, r.sim.Elapsed()
		for _, m := range r.metrics {
			m.Observe(x, t)
		}
		for _, o := range r.observers {
			o.OnStep(x, t)
		}

		r.sample(result)
	}

	r.collect(result)
	return result, nil
}

func (r *Runner) sample(result *Result) {
	result.Times = append(result.Times, r.sim.Elapsed())
	for i, c := range r.tracked {
		result.Series[i].Values = append(result.Series[i].Values, r.sim.Concentration(c))
	}
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Run is shorthand for a Runner over s with the given metrics installed.
func Run(ctx context.Context, s *Simulation, tracked []chem.Chemical, cfg Config, metrics ...Metric) (*Result, error) {
	r := NewRunner(s, tracked...)
	for _, m := range metrics {
		r.AddMetric(m)
	}
	return r.Run(ctx, cfg)
}
