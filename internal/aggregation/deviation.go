package aggregation

import (
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var deviationIndexSpecs = []strategy.Spec{
	{Name: "ideal_value", Kind: strategy.KindFloat, Default: 1.0,
		Description: "score every objective is measured against"},
}

// DeviationIndex is 1 - sqrt(Σ w²(ideal-v)² / Σ w²): one when every value
// sits at the ideal, falling with weighted distance from it.
type DeviationIndex struct{ base }

func NewDeviationIndex(params map[string]any) (*DeviationIndex, error) {
	b, err := newBase("deviation_index", deviationIndexSpecs, params)
	if err != nil {
		return nil, err
	}
	return &DeviationIndex{b}, nil
}

func (d *DeviationIndex) Compute(values, weights []float64) (float64, error) {
	p, err := d.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	ideal := d.params.Float("ideal_value")
	var num, den float64
	for i, v := range p.Values {
		w2 := p.Weights[i] * p.Weights[i]
		diff := ideal - v
		num += w2 * diff * diff
		den += w2
	}
	return 1 - math.Sqrt(num/den), nil
}
