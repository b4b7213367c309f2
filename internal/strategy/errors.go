package strategy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch is returned when a value's runtime type does not match
	// the declared kind of a parameter or the input domain of a strategy.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange is returned when a value violates a bound or a
	// cross-parameter constraint.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMissingParameter is returned when a mandatory parameter has no value
	// at the time a strategy is used.
	ErrMissingParameter = errors.New("missing mandatory parameter")

	// ErrUnknownParameter is returned when a caller supplies a parameter name
	// the strategy does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrUnknownStrategy is returned by catalogue lookups for unregistered keys.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrDuplicateRegistration is returned when a catalogue key is registered twice.
	ErrDuplicateRegistration = errors.New("strategy already registered")

	// ErrInvalidInputShape is returned for inputs that are not sequences or
	// whose lengths disagree.
	ErrInvalidInputShape = errors.New("invalid input shape")

	// ErrNoValidPairs is returned when nothing is left to aggregate after
	// absent values and weights are dropped.
	ErrNoValidPairs = fmt.Errorf("%w: no valid value/weight pairs", ErrInvalidInputShape)
)

// ParameterError reports a failure tied to one parameter of one strategy.
type ParameterError struct {
	Strategy  string
	Parameter string
	Err       error
}

func (e *ParameterError) Error() string {
	if e.Strategy == "" {
		return fmt.Sprintf("parameter %q: %v", e.Parameter, e.Err)
	}
	return fmt.Sprintf("%s: parameter %q: %v", e.Strategy, e.Parameter, e.Err)
}

func (e *ParameterError) Unwrap() error { return e.Err }

// MissingParametersError lists every mandatory parameter still unset.
type MissingParametersError struct {
	Strategy string
	Names    []string
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Strategy, ErrMissingParameter, strings.Join(e.Names, ", "))
}

func (e *MissingParametersError) Unwrap() error { return ErrMissingParameter }
