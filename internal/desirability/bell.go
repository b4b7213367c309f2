package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var bellSpecs = []strategy.Spec{
	{Name: "width", Kind: strategy.KindFloat, Min: strategy.Bound(math.SmallestNonzeroFloat64),
		Description: "half-width at which the curve reaches 0.5"},
	{Name: "slope", Kind: strategy.KindFloat, Default: 1.0, Min: strategy.Bound(1)},
	{Name: "center", Kind: strategy.KindFloat},
	invertSpec,
	shiftSpec,
}

// Bell is the generalized bell curve 1/(1+|(x-center)/width|^(2*slope)).
type Bell struct {
	params *strategy.Params
}

func NewBell(params map[string]any) (*Bell, error) {
	b := &Bell{params: strategy.NewParams("bell", bellSpecs)}
	if err := b.params.SetValues(params); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bell) Name() string              { return "bell" }
func (b *Bell) Params() *strategy.Params { return b.params }

func (b *Bell) Validate() error {
	if w := b.params.Float("width"); w <= 0 {
		return fmt.Errorf("%w: width must be positive, got %v", strategy.ErrOutOfRange, w)
	}
	return nil
}

func (b *Bell) Compute(x any) (float64, error) {
	v, err := numeric(b.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(b); err != nil {
		return 0, err
	}
	p := b.params
	exponent := 2 * math.Abs(p.Float("slope"))
	dist := math.Abs((v - p.Float("center")) / p.Float("width"))

	var r float64
	// far tails would overflow dist^exponent
	if dist > 1 && exponent > math.Log(math.MaxFloat64)/math.Log(dist) {
		r = 0
	} else {
		r = 1 / (1 + math.Pow(dist, exponent))
	}
	return finish(p, r), nil
}
