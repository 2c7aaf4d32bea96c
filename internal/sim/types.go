package sim

import (
	"fmt"
	"math"
)

// State holds concentrations indexed by chemical handle.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Metric accumulates a scalar over a run. Observe receives the live
// post-step state and must not retain it.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every step. x must not be retained.
type Observer interface {
	OnStep(x State, t float64)
}

// MaxSteps bounds the number of steps of one run.
const MaxSteps = 100_000_000

type Config struct {
	Dt       float64 `json:"dt" yaml:"dt"`
	Duration float64 `json:"duration" yaml:"duration"`
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.001,
		Duration: 1.0,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.Dt > c.Duration {
		return fmt.Errorf("%w: dt %g exceeds duration %g", ErrInvalidConfig, c.Dt, c.Duration)
	}
	if n := c.Duration / c.Dt; !(n <= MaxSteps) {
		return fmt.Errorf("%w: %g steps exceeds the limit of %d", ErrInvalidConfig, n, MaxSteps)
	}
	return nil
}

// Steps is the number of steps needed to cover Duration.
func (c Config) Steps() int {
	n := c.Duration / c.Dt
	return int(math.Ceil(n - n*1e-9))
}

// Series is the sampled trajectory of one chemical.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

type Result struct {
	Times      []float64          `json:"times"`
	Series     []Series           `json:"series"`
	Metrics    map[string]float64 `json:"metrics"`
	StepsTaken int                `json:"steps"`
}

func (r *Result) Lookup(name string) (*Series, bool) {
	for i := range r.Series {
		if r.Series[i].Name == name {
			return &r.Series[i], true
		}
	}
	return nil, false
}

// Final returns the last sampled value of the named series.
func (r *Result) Final(name string) (float64, bool) {
	s, ok := r.Lookup(name)
	if !ok || len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}
