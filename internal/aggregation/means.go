package aggregation

import (
	"math"
)

// ArithmeticMean is Σ w·v over normalized weights.
type ArithmeticMean struct{ base }

func NewArithmeticMean(params map[string]any) (*ArithmeticMean, error) {
	b, err := newBase("arithmetic_mean", nil, params)
	if err != nil {
		return nil, err
	}
	return &ArithmeticMean{b}, nil
}

func (a *ArithmeticMean) Compute(values, weights []float64) (float64, error) {
	p, err := a.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	return weightedSum(p), nil
}

// GeometricMean is Π v^w over normalized weights. Any zero value with a
// positive weight yields zero.
type GeometricMean struct{ base }

func NewGeometricMean(params map[string]any) (*GeometricMean, error) {
	b, err := newBase("geometric_mean", nil, params)
	if err != nil {
		return nil, err
	}
	return &GeometricMean{b}, nil
}

func (g *GeometricMean) Compute(values, weights []float64) (float64, error) {
	p, err := g.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	return weightedProduct(p), nil
}

// HarmonicMean is 1 / Σ (w/v) over normalized weights. Any zero value with a
// positive weight yields zero.
type HarmonicMean struct{ base }

func NewHarmonicMean(params map[string]any) (*HarmonicMean, error) {
	b, err := newBase("harmonic_mean", nil, params)
	if err != nil {
		return nil, err
	}
	return &HarmonicMean{b}, nil
}

func (h *HarmonicMean) Compute(values, weights []float64) (float64, error) {
	p, err := h.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	var denom float64
	for i, v := range p.Values {
		w := p.Weights[i]
		if w == 0 {
			continue
		}
		if v == 0 {
			return 0, nil
		}
		denom += w / v
	}
	return 1 / denom, nil
}

func weightedSum(p Prepared) float64 {
	var sum float64
	for i, v := range p.Values {
		sum += p.Weights[i] * v
	}
	return sum
}

func weightedProduct(p Prepared) float64 {
	prod := 1.0
	for i, v := range p.Values {
		prod *= math.Pow(v, p.Weights[i])
	}
	return prod
}
