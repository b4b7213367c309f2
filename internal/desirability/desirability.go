// Package desirability maps raw property values onto [0,1] preference scores.
package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Function is a desirability strategy. Numeric families take float64 input,
// categorical families take string input.
type Function interface {
	strategy.Strategy
	Compute(x any) (float64, error)
}

var (
	shiftSpec = strategy.Spec{
		Name: "shift", Kind: strategy.KindFloat, Default: 0.0,
		Min: strategy.Bound(0), Max: strategy.Bound(1),
		Description: "vertical shift; the result is mapped onto [shift, 1]",
	}
	invertSpec = strategy.Spec{
		Name: "invert", Kind: strategy.KindBool, Default: false,
		Description: "return 1 - result before shifting",
	}
)

func numeric(name string, x any) (float64, error) {
	f, ok := x.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: %w: expected float64 input, got %T", name, strategy.ErrTypeMismatch, x)
	}
	return f, nil
}

func text(name string, x any) (string, error) {
	s, ok := x.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w: expected string input, got %T", name, strategy.ErrTypeMismatch, x)
	}
	return s, nil
}

func shifted(r, shift float64) float64 {
	return r*(1-shift) + shift
}

func finish(p *strategy.Params, r float64) float64 {
	if p.Bool("invert") {
		r = 1 - r
	}
	return shifted(r, p.Float("shift"))
}

// logistic is 1/(1+e^-h) evaluated without overflow for large |h|.
func logistic(h float64) float64 {
	if h >= 0 {
		return 1 / (1 + math.Exp(-h))
	}
	e := math.Exp(h)
	return e / (1 + e)
}

func hardStep(x, k float64) float64 {
	if k*x > 0 {
		return 1
	}
	return 0
}

func checkBase(p *strategy.Params) error {
	if base := p.Float("base"); base <= 1 {
		return fmt.Errorf("%w: base must be greater than 1, got %v", strategy.ErrOutOfRange, base)
	}
	return nil
}
