package desirability

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

var valueMappingSpecs = []strategy.Spec{
	{Name: "mapping", Kind: strategy.KindMapping, Check: checkMapping,
		Description: "label to desirability in [0, 1]"},
	shiftSpec,
}

// ValueMapping looks a string label up in a fixed table. Unmapped labels
// score NaN, which aggregation treats as absent.
type ValueMapping struct {
	params *strategy.Params
}

func NewValueMapping(params map[string]any) (*ValueMapping, error) {
	m := &ValueMapping{params: strategy.NewParams("value_mapping", valueMappingSpecs)}
	if err := m.params.SetValues(params); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ValueMapping) Name() string              { return "value_mapping" }
func (m *ValueMapping) Params() *strategy.Params { return m.params }

func (m *ValueMapping) Compute(x any) (float64, error) {
	label, err := text(m.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(m); err != nil {
		return 0, err
	}
	table := m.params.Get("mapping").(map[string]float64)
	r, ok := table[label]
	if !ok {
		return math.NaN(), nil
	}
	return shifted(r, m.params.Float("shift")), nil
}

func checkMapping(v any) (any, error) {
	out := make(map[string]float64)
	switch m := v.(type) {
	case map[string]float64:
		for k, f := range m {
			out[k] = f
		}
	case map[string]any:
		for k, raw := range m {
			f, ok := strategy.ToFloat(raw)
			if !ok {
				return nil, fmt.Errorf("%w: mapping value for %q is %T", strategy.ErrTypeMismatch, k, raw)
			}
			out[k] = f
		}
	default:
		return nil, fmt.Errorf("%w: unsupported mapping type %T", strategy.ErrTypeMismatch, v)
	}
	for k, f := range out {
		if !(f >= 0 && f <= 1) {
			return nil, fmt.Errorf("%w: mapping value for %q is %v, want [0, 1]", strategy.ErrOutOfRange, k, f)
		}
	}
	return out, nil
}
