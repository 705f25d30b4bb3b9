package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonPositiveMass indicates a particle constructed with zero or negative mass.
	ErrNonPositiveMass = errors.New("dynamo: particle mass must be positive")

	// ErrNegativeRadius indicates a particle constructed with a negative radius.
	ErrNegativeRadius = errors.New("dynamo: particle radius must not be negative")

	// ErrNonPositiveStep indicates a tick duration that is zero or negative.
	ErrNonPositiveStep = errors.New("dynamo: time step must be positive")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownPreset indicates a lookup for a preset that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrUnknownIntegrator indicates a lookup for an integrator that is not registered.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
