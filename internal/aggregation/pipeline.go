package aggregation

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Prepared is aggregation input after absent pairs are removed and weights
// are normalized to sum to one.
type Prepared struct {
	Values  []float64
	Weights []float64
	// Dropped holds the original indexes of removed pairs.
	Dropped []int
}

// Prepare runs the shared input pipeline: fill weights, check lengths, drop
// pairs with an absent side, reject negative entries, normalize weights.
func Prepare(values, weights []float64) (Prepared, error) {
	if weights == nil {
		weights = make([]float64, len(values))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(values) != len(weights) {
		return Prepared{}, fmt.Errorf("%w: %d values but %d weights",
			strategy.ErrInvalidInputShape, len(values), len(weights))
	}

	p := Prepared{
		Values:  make([]float64, 0, len(values)),
		Weights: make([]float64, 0, len(values)),
	}
	for i := range values {
		v, w := values[i], weights[i]
		if math.IsNaN(v) || math.IsNaN(w) {
			p.Dropped = append(p.Dropped, i)
			continue
		}
		if v < 0 || math.IsInf(v, 0) {
			return Prepared{}, fmt.Errorf("%w: value %d is %v, want finite and non-negative", strategy.ErrOutOfRange, i, v)
		}
		if w < 0 || math.IsInf(w, 0) {
			return Prepared{}, fmt.Errorf("%w: weight %d is %v, want finite and non-negative", strategy.ErrOutOfRange, i, w)
		}
		p.Values = append(p.Values, v)
		p.Weights = append(p.Weights, w)
	}
	if len(p.Values) == 0 {
		return Prepared{}, strategy.ErrNoValidPairs
	}

	var total float64
	for _, w := range p.Weights {
		total += w
	}
	if total == 0 {
		return Prepared{}, fmt.Errorf("%w: weights sum to zero", strategy.ErrOutOfRange)
	}
	for i := range p.Weights {
		p.Weights[i] /= total
	}
	return p, nil
}
