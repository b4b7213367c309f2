package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var sigmoidBellSpecs = []strategy.Spec{
	{Name: "x1", Kind: strategy.KindFloat, Description: "start of the rising edge"},
	{Name: "x2", Kind: strategy.KindFloat, Description: "end of the rising edge"},
	{Name: "x3", Kind: strategy.KindFloat, Description: "start of the falling edge"},
	{Name: "x4", Kind: strategy.KindFloat, Description: "end of the falling edge"},
	{Name: "k", Kind: strategy.KindFloat, Default: 1.0, Min: strategy.Bound(1)},
	{Name: "base", Kind: strategy.KindFloat, Default: 10.0, Min: strategy.Bound(1)},
	invertSpec,
	shiftSpec,
}

// SigmoidBell is the difference of two sigmoids: rising over [x1,x2] and
// falling over [x3,x4].
type SigmoidBell struct {
	params *strategy.Params
}

func NewSigmoidBell(params map[string]any) (*SigmoidBell, error) {
	s := &SigmoidBell{params: strategy.NewParams("sigmoid_bell", sigmoidBellSpecs)}
	if err := s.params.SetValues(params); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SigmoidBell) Name() string              { return "sigmoid_bell" }
func (s *SigmoidBell) Params() *strategy.Params { return s.params }

func (s *SigmoidBell) Validate() error {
	if err := checkBase(s.params); err != nil {
		return err
	}
	p := s.params
	x1, x2, x3, x4 := p.Float("x1"), p.Float("x2"), p.Float("x3"), p.Float("x4")
	if x2 < x1 || x3 < x2 || x4 < x3 {
		return fmt.Errorf("%w: need x1 <= x2 <= x3 <= x4, got %v, %v, %v, %v",
			strategy.ErrOutOfRange, x1, x2, x3, x4)
	}
	return nil
}

func (s *SigmoidBell) Compute(x any) (float64, error) {
	v, err := numeric(s.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(s); err != nil {
		return 0, err
	}
	p := s.params
	k, base := p.Float("k"), p.Float("base")
	r := sigmoid(v, p.Float("x1"), p.Float("x2"), k, base) - sigmoid(v, p.Float("x3"), p.Float("x4"), k, base)
	// edges of unequal width can dip marginally below zero in the tails
	r = math.Max(0, math.Min(1, r))
	return finish(p, r), nil
}
