package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/rxnsim/internal/sim"
)

// SweepResult is one run of a step-size study.
type SweepResult struct {
	Dt     float64
	Result *sim.Result
	Final  map[string]float64
	// Deviation is the largest difference between this run's final
	// concentrations and those of the finest step size.
	Deviation float64
}

// RunSweep runs the experiment once per step size, concurrently on at most
// workers goroutines, and compares every run with the finest one. Results
// are ordered from the coarsest to the finest step.
func RunSweep(ctx context.Context, e *Experiment, dts []float64, workers int) ([]SweepResult, error) {
	if len(dts) == 0 {
		return nil, fmt.Errorf("sweep: no step sizes")
	}

	sorted := append([]float64(nil), dts...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	cfgs := make([]sim.Config, len(sorted))
	for i, dt := range sorted {
		cfgs[i] = sim.Config{Dt: dt, Duration: e.cfg.Duration}
	}

	base, err := e.Simulation()
	if err != nil {
		return nil, err
	}

	ens := sim.NewEnsemble(base, e.tracked...)
	ens.SetWorkers(workers)
	ens.WithMetrics(func() []sim.Metric { return e.Metrics(base) })

	slog.Debug("sweep started", "experiment", e.cfg.Name, "runs", len(cfgs), "workers", workers)
	runs, err := ens.Run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, res := range runs {
		results[i] = SweepResult{Dt: sorted[i], Result: res, Final: finals(res)}
	}

	ref := results[len(results)-1].Final
	for i := range results {
		for name, v := range results[i].Final {
			results[i].Deviation = math.Max(results[i].Deviation, math.Abs(v-ref[name]))
		}
	}
	return results, nil
}

func finals(res *sim.Result) map[string]float64 {
	out := make(map[string]float64, len(res.Series))
	for _, s := range res.Series {
		if v, ok := res.Final(s.Name); ok {
			out[s.Name] = v
		}
	}
	return out
}
