package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var doubleSigmoidSpecs = []strategy.Spec{
	{Name: "low", Kind: strategy.KindFloat, Description: "centre of the rising edge"},
	{Name: "high", Kind: strategy.KindFloat, Description: "centre of the falling edge"},
	{Name: "coef_div", Kind: strategy.KindFloat, Default: 1.0, Min: strategy.Bound(0),
		Description: "divisor for both edge coefficients; 0 gives hard edges"},
	{Name: "coef_si", Kind: strategy.KindFloat, Default: 1.0, Min: strategy.Bound(0), Description: "rising edge steepness"},
	{Name: "coef_se", Kind: strategy.KindFloat, Default: 1.0, Min: strategy.Bound(0), Description: "falling edge steepness"},
	{Name: "base", Kind: strategy.KindFloat, Default: 10.0, Min: strategy.Bound(0)},
	invertSpec,
	shiftSpec,
}

// DoubleSigmoid is a plateau between a rising sigmoid at low and a falling one at high.
type DoubleSigmoid struct {
	params *strategy.Params
}

func NewDoubleSigmoid(params map[string]any) (*DoubleSigmoid, error) {
	d := &DoubleSigmoid{params: strategy.NewParams("double_sigmoid", doubleSigmoidSpecs)}
	if err := d.params.SetValues(params); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DoubleSigmoid) Name() string              { return "double_sigmoid" }
func (d *DoubleSigmoid) Params() *strategy.Params { return d.params }

func (d *DoubleSigmoid) Validate() error {
	if err := checkBase(d.params); err != nil {
		return err
	}
	if d.params.Float("high") < d.params.Float("low") {
		return fmt.Errorf("%w: high must not be below low", strategy.ErrOutOfRange)
	}
	return nil
}

func (d *DoubleSigmoid) Compute(x any) (float64, error) {
	v, err := numeric(d.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(d); err != nil {
		return 0, err
	}
	p := d.params
	low, high := p.Float("low"), p.Float("high")
	div, base := p.Float("coef_div"), p.Float("base")

	center := (high-low)/2 + low
	var r float64
	if v < center {
		r = edge(v-low, p.Float("coef_si"), div, base)
	} else {
		r = 1 - edge(v-high, p.Float("coef_se"), div, base)
	}
	return finish(p, r), nil
}

func edge(x, coef, div, base float64) float64 {
	if div == 0 {
		return hardStep(x, coef)
	}
	return logistic(coef / div * x * math.Log(base))
}
