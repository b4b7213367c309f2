package desirability

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Category is one labelled level of a categorical property. It encodes as a
// [name, value] pair.
type Category struct {
	Name  string
	Value float64
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Name, c.Value})
}

var categorySpecs = []strategy.Spec{
	{Name: "categories", Kind: strategy.KindSequence, Check: checkCategories,
		Description: "at least two distinct [name, value] pairs with value in [0, 1]"},
	shiftSpec,
}

// CategoryFunction scores a closed set of labels. Unlike ValueMapping an
// unknown label is an error.
type CategoryFunction struct {
	params *strategy.Params
}

func NewCategory(params map[string]any) (*CategoryFunction, error) {
	c := &CategoryFunction{params: strategy.NewParams("category", categorySpecs)}
	if err := c.params.SetValues(params); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CategoryFunction) Name() string              { return "category" }
func (c *CategoryFunction) Params() *strategy.Params { return c.params }

func (c *CategoryFunction) Compute(x any) (float64, error) {
	label, err := text(c.Name(), x)
	if err != nil {
		return 0, err
	}
	if err := strategy.Verify(c); err != nil {
		return 0, err
	}
	for _, cat := range c.params.Get("categories").([]Category) {
		if cat.Name == label {
			return shifted(cat.Value, c.params.Float("shift")), nil
		}
	}
	return 0, fmt.Errorf("%s: %w: category %q not found", c.Name(), strategy.ErrOutOfRange, label)
}

func checkCategories(v any) (any, error) {
	var cats []Category
	switch c := v.(type) {
	case []Category:
		cats = append(cats, c...)
	case []any:
		for i, raw := range c {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: category %d must be a [name, value] pair", strategy.ErrInvalidInputShape, i)
			}
			name, okName := pair[0].(string)
			value, okValue := strategy.ToFloat(pair[1])
			if !okName || !okValue {
				return nil, fmt.Errorf("%w: category %d must be [string, number]", strategy.ErrTypeMismatch, i)
			}
			cats = append(cats, Category{Name: name, Value: value})
		}
	default:
		return nil, fmt.Errorf("%w: unsupported categories type %T", strategy.ErrTypeMismatch, v)
	}

	if len(cats) < 2 {
		return nil, fmt.Errorf("%w: at least two categories are required", strategy.ErrInvalidInputShape)
	}
	seen := make(map[string]bool, len(cats))
	for _, cat := range cats {
		if math.IsNaN(cat.Value) || cat.Value < 0 || cat.Value > 1 {
			return nil, fmt.Errorf("%w: category %q has value %v, want [0, 1]", strategy.ErrOutOfRange, cat.Name, cat.Value)
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("%w: duplicate category %q", strategy.ErrOutOfRange, cat.Name)
		}
		seen[cat.Name] = true
	}
	return cats, nil
}
