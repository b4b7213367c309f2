package aggregation

// Summation and Product are kept as separate keys so profiles written against
// them keep loading. With normalized weights they coincide with the weighted
// arithmetic and geometric means.

type Summation struct{ base }

func NewSummation(params map[string]any) (*Summation, error) {
	b, err := newBase("summation", nil, params)
	if err != nil {
		return nil, err
	}
	return &Summation{b}, nil
}

func (s *Summation) Compute(values, weights []float64) (float64, error) {
	p, err := s.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	return weightedSum(p), nil
}

type Product struct{ base }

func NewProduct(params map[string]any) (*Product, error) {
	b, err := newBase("product", nil, params)
	if err != nil {
		return nil, err
	}
	return &Product{b}, nil
}

func (p *Product) Compute(values, weights []float64) (float64, error) {
	prep, err := p.prepare(values, weights)
	if err != nil {
		return 0, err
	}
	return weightedProduct(prep), nil
}
