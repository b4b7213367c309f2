package strategy

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Kind is the declared type of a parameter.
type Kind string

const (
	KindFloat    Kind = "float"
	KindInt      Kind = "int"
	KindBool     Kind = "bool"
	KindString   Kind = "string"
	KindSequence Kind = "sequence"
	KindMapping  Kind = "mapping"
)

// Spec declares a parameter slot: its name, kind, default and inclusive bounds.
// A nil Default marks the parameter as mandatory. Min and Max apply to float
// and int kinds only; nil means unbounded on that side.
type Spec struct {
	Name        string
	Kind        Kind
	Default     any
	Min         *float64
	Max         *float64
	Description string

	// Check validates the content of sequence and mapping values and returns
	// the canonical value to store.
	Check func(v any) (any, error)
}

// Mandatory reports whether the parameter has no default.
func (s Spec) Mandatory() bool { return s.Default == nil }

// Bound returns a pointer for use as Spec.Min or Spec.Max.
func Bound(v float64) *float64 { return &v }

// Parameter holds the live value of one declared slot.
type Parameter struct {
	spec  Spec
	value any
}

// NewParameter creates a parameter holding its default, or no value when mandatory.
func NewParameter(spec Spec) *Parameter {
	return &Parameter{spec: spec, value: spec.Default}
}

func (p *Parameter) Spec() Spec { return p.spec }

// Get returns the current value, or nil when absent.
func (p *Parameter) Get() any { return p.value }

// IsSet reports whether the parameter currently holds a value.
func (p *Parameter) IsSet() bool { return p.value != nil }

// Set stores v after checking its type and bounds. A rejected value leaves the
// previous value untouched. Set(nil) clears the parameter.
func (p *Parameter) Set(v any) error {
	if v == nil {
		p.value = nil
		return nil
	}
	checked, err := p.validate(v)
	if err != nil {
		return err
	}
	p.value = checked
	return nil
}

func (p *Parameter) validate(v any) (any, error) {
	switch p.spec.Kind {
	case KindFloat:
		f, ok := v.(float64)
		if !ok {
			return nil, mismatch(p.spec.Kind, v)
		}
		if math.IsNaN(f) {
			return nil, fmt.Errorf("%w: NaN", ErrOutOfRange)
		}
		if err := p.checkBounds(f); err != nil {
			return nil, err
		}
		return f, nil
	case KindInt:
		i, ok := v.(int)
		if !ok {
			return nil, mismatch(p.spec.Kind, v)
		}
		if err := p.checkBounds(float64(i)); err != nil {
			return nil, err
		}
		return i, nil
	case KindBool:
		if _, ok := v.(bool); !ok {
			return nil, mismatch(p.spec.Kind, v)
		}
		return v, nil
	case KindString:
		if _, ok := v.(string); !ok {
			return nil, mismatch(p.spec.Kind, v)
		}
		return v, nil
	case KindSequence:
		rk := reflect.TypeOf(v).Kind()
		if rk != reflect.Slice && rk != reflect.Array {
			return nil, mismatch(p.spec.Kind, v)
		}
	case KindMapping:
		t := reflect.TypeOf(v)
		if t.Kind() != reflect.Map || t.Key().Kind() != reflect.String {
			return nil, mismatch(p.spec.Kind, v)
		}
	default:
		return nil, fmt.Errorf("unsupported parameter kind %q", p.spec.Kind)
	}

	if p.spec.Check == nil {
		return v, nil
	}
	return p.spec.Check(v)
}

func (p *Parameter) checkBounds(f float64) error {
	if p.spec.Min != nil && f < *p.spec.Min {
		return fmt.Errorf("%w: %v is below minimum %v", ErrOutOfRange, f, *p.spec.Min)
	}
	if p.spec.Max != nil && f > *p.spec.Max {
		return fmt.Errorf("%w: %v is above maximum %v", ErrOutOfRange, f, *p.spec.Max)
	}
	return nil
}

func mismatch(want Kind, got any) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, want, got)
}

// Coerce converts a decoded value into the Go type spec.Kind expects.
// Numbers decoded from JSON carry no int/float distinction, so json.Number is
// resolved here; an int parameter still rejects non-integral numbers. Values
// Coerce does not recognise are returned unchanged for Set to judge.
func Coerce(spec Spec, v any) (any, error) {
	switch spec.Kind {
	case KindFloat:
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, n.String())
			}
			return f, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindInt:
		switch n := v.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return int(i), nil
			}
			f, err := n.Float64()
			if err != nil || f != math.Trunc(f) {
				return nil, fmt.Errorf("%w: expected int, got %s", ErrTypeMismatch, n.String())
			}
			return int(f), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: expected int, got %v", ErrTypeMismatch, n)
			}
			return int(n), nil
		case int64:
			return int(n), nil
		}
	}
	return v, nil
}

// ToFloat reads a number out of decoded sequence or mapping content.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
