package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for command generation and simulation.
var (
	// ErrInvalidParameter indicates a non-positive limit or otherwise misconfigured move.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrUnsupportedShaperLength indicates a shaper with more impulses than supported.
	ErrUnsupportedShaperLength = errors.New("dynamo: unsupported shaper length")

	// ErrIntegrationFailure indicates the integrator could not produce a trajectory.
	ErrIntegrationFailure = errors.New("dynamo: integration failure")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrTooManySteps indicates the integrator exhausted its step budget.
	ErrTooManySteps = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an integrator failure with simulation context.
// It matches both ErrIntegrationFailure and the wrapped cause.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.6f): %v", ErrIntegrationFailure, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() []error {
	return []error{ErrIntegrationFailure, e.Wrapped}
}

// InvalidParameter returns an ErrInvalidParameter with a formatted reason.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
