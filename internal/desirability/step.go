package desirability

import (
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

type stepMode int

const (
	stepWindow stepMode = iota
	stepLeft
	stepRight
)

var stepSpecs = []strategy.Spec{
	{Name: "low", Kind: strategy.KindFloat},
	{Name: "high", Kind: strategy.KindFloat},
	shiftSpec,
}

// Step is a binary desirability: inside [low, high] for the window form,
// at or below low for the left form, at or above high for the right form.
// All three forms declare both edges.
type Step struct {
	name   string
	mode   stepMode
	params *strategy.Params
}

func newStep(name string, mode stepMode, params map[string]any) (*Step, error) {
	s := &Step{name: name, mode: mode, params: strategy.NewParams(name, stepSpecs)}
	if err := s.params.SetValues(params); err != nil {
		return nil, err
	}
	return s, nil
}

func NewStep(params map[string]any) (*Step, error) { return newStep("step", stepWindow, params) }

func NewLeftStep(params map[string]any) (*Step, error) { return newStep("leftstep", stepLeft, params) }

func NewRightStep(params map[string]any) (*Step, error) { return newStep("rightstep", stepRight, params) }

func (s *Step) Name() string              { return s.name }
func (s *Step) Params() *strategy.Params { return s.params }

func (s *Step) Compute(x any) (float64, error) {
	v, err := numeric(s.name, x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(s); err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return math.NaN(), nil
	}
	low, high := s.params.Float("low"), s.params.Float("high")

	var hit bool
	switch s.mode {
	case stepLeft:
		hit = v <= low
	case stepRight:
		hit = v >= high
	default:
		hit = low <= v && v <= high
	}
	r := 0.0
	if hit {
		r = 1
	}
	return shifted(r, s.params.Float("shift")), nil
}
