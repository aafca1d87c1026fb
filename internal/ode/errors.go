package ode

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized indicates Integrate was called before Initialize
	// established bounds and initial state.
	ErrNotInitialized = errors.New("ode: integrator not initialized")

	// ErrDimensionMismatch indicates the state vector does not match the
	// model dimension.
	ErrDimensionMismatch = errors.New("ode: state dimension does not match model")

	// ErrInvalidState indicates NaN or Inf appeared in the state vector.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates an adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")
)

// StepLimitError reports that an engine gave up after exhausting its step
// budget. Time is how far the integration got; Steps is the budget.
type StepLimitError struct {
	Time  float64
	Steps int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("ode: step limit of %d reached at t=%g", e.Steps, e.Time)
}
