package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStep is returned by Step for a non-positive or non-finite dt.
	ErrInvalidStep = errors.New("sim: step size must be positive and finite")

	// ErrInvalidConfig indicates run settings the driver cannot honour.
	ErrInvalidConfig = errors.New("sim: invalid run config")

	// ErrForeignChemical indicates a chemical issued by another registry.
	ErrForeignChemical = errors.New("sim: chemical not registered in this simulation")
)

// StepError wraps a failure inside a run with its position.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
