// Package aggregation combines weighted desirability scores into one score.
package aggregation

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Function is an aggregation strategy. A nil weights slice means equal
// weights; NaN in either slice marks an absent entry and drops its pair.
type Function interface {
	strategy.Strategy
	Compute(values, weights []float64) (float64, error)
}

// base carries what every aggregation shares: its parameters and the logger
// used for dropped-pair warnings.
type base struct {
	name   string
	params *strategy.Params
	logger *slog.Logger
}

func newBase(name string, specs []strategy.Spec, params map[string]any) (base, error) {
	b := base{name: name, params: strategy.NewParams(name, specs)}
	if err := b.params.SetValues(params); err != nil {
		return base{}, err
	}
	return b, nil
}

func (b *base) Name() string              { return b.name }
func (b *base) Params() *strategy.Params { return b.params }

// SetLogger replaces the logger used for warnings; nil restores slog.Default.
func (b *base) SetLogger(l *slog.Logger) { b.logger = l }

func (b *base) log() *slog.Logger {
	if b.logger == nil {
		return slog.Default()
	}
	return b.logger
}

func (b *base) prepare(values, weights []float64) (Prepared, error) {
	if err := b.params.Ready(); err != nil {
		return Prepared{}, err
	}
	p, err := Prepare(values, weights)
	if err != nil {
		return Prepared{}, fmt.Errorf("%s: %w", b.name, err)
	}
	if len(p.Dropped) > 0 {
		b.log().Warn("dropping absent value/weight pairs",
			"aggregation", b.name, "indexes", p.Dropped, "remaining", len(p.Values))
	}
	return p, nil
}

// LoggerSetter is implemented by every built-in aggregation.
type LoggerSetter interface {
	SetLogger(*slog.Logger)
}

// Aggregate runs fn over loosely typed input, as decoded from JSON. values and
// weights may be []float64 or []any holding numbers and nils; nil entries are
// absent. A nil weights argument means equal weights.
func Aggregate(fn Function, values, weights any) (float64, error) {
	vs, err := toFloats("values", values)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	var ws []float64
	if weights != nil {
		if ws, err = toFloats("weights", weights); err != nil {
			return 0, fmt.Errorf("%s: %w", fn.Name(), err)
		}
	}
	return fn.Compute(vs, ws)
}

func toFloats(field string, v any) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		return s, nil
	case []any:
		out := make([]float64, len(s))
		for i, item := range s {
			if item == nil {
				out[i] = math.NaN()
				continue
			}
			f, ok := strategy.ToFloat(item)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T, want number", strategy.ErrTypeMismatch, field, i, item)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a sequence, got %T", strategy.ErrInvalidInputShape, field, v)
	}
}
