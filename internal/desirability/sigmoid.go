package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var sigmoidSpecs = []strategy.Spec{
	{Name: "low", Kind: strategy.KindFloat, Description: "lower edge of the transition"},
	{Name: "high", Kind: strategy.KindFloat, Description: "upper edge of the transition"},
	{Name: "k", Kind: strategy.KindFloat, Default: 0.5, Min: strategy.Bound(-1), Max: strategy.Bound(1),
		Description: "steepness; negative values produce a decreasing curve"},
	{Name: "base", Kind: strategy.KindFloat, Default: 10.0, Min: strategy.Bound(1), Max: strategy.Bound(10)},
	shiftSpec,
}

// Sigmoid is a monotone S-curve centred between low and high.
type Sigmoid struct {
	params *strategy.Params
}

func NewSigmoid(params map[string]any) (*Sigmoid, error) {
	s := &Sigmoid{params: strategy.NewParams("sigmoid", sigmoidSpecs)}
	if err := s.params.SetValues(params); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sigmoid) Name() string              { return "sigmoid" }
func (s *Sigmoid) Params() *strategy.Params { return s.params }

func (s *Sigmoid) Validate() error {
	if err := checkBase(s.params); err != nil {
		return err
	}
	if s.params.Float("high") < s.params.Float("low") {
		return fmt.Errorf("%w: high must not be below low", strategy.ErrOutOfRange)
	}
	return nil
}

func (s *Sigmoid) Compute(x any) (float64, error) {
	v, err := numeric(s.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(s); err != nil {
		return 0, err
	}
	p := s.params
	r := sigmoid(v, p.Float("low"), p.Float("high"), p.Float("k"), p.Float("base"))
	return shifted(r, p.Float("shift")), nil
}

// sigmoid rescales k so that the transition spans [low, high] regardless of
// their distance. Equal edges degrade to a hard step at the centre.
func sigmoid(x, low, high, k, base float64) float64 {
	centered := x - (high+low)/2
	if high == low && !math.IsNaN(x) {
		return hardStep(centered, k)
	}
	adjusted := 10 * k / (high - low)
	return logistic(adjusted * centered * math.Log(base))
}
