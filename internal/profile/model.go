// Package profile holds the declarative description of a scoring setup and
// validates it into an immutable Profile.
package profile

import (
	"encoding/json"
	"errors"
)

// ErrProfileInvalid wraps every profile validation and decoding failure.
var ErrProfileInvalid = errors.New("invalid scoring profile")

// FunctionRef names a catalogue entry and the parameters to configure it with.
type FunctionRef struct {
	Name       string         `json:"name" yaml:"name"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// ObjectiveSpec is one objective as written in a profile document.
type ObjectiveSpec struct {
	Name                 string      `json:"name" yaml:"name"`
	DesirabilityFunction FunctionRef `json:"desirability_function" yaml:"desirability_function"`
	Weight               *float64    `json:"weight,omitempty" yaml:"weight,omitempty"`
	// ValueType is one of float, str, bool. Optional.
	ValueType string `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	// Kind is numerical or categorical. Optional.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Description is the unvalidated, serializable form of a scoring profile.
type Description struct {
	Objectives          []ObjectiveSpec `json:"objectives" yaml:"objectives"`
	AggregationFunction FunctionRef     `json:"aggregation_function" yaml:"aggregation_function"`
}

// Objective is a validated objective.
type Objective struct {
	Name         string
	Desirability FunctionRef
	Weight       *float64
	ValueType    string
	Kind         string
}

// Profile is a validated scoring profile. It is immutable: accessors return copies.
type Profile struct {
	objectives  []ObjectiveSpec
	aggregation FunctionRef
}

// Objectives returns the objectives in declaration order.
func (p *Profile) Objectives() []Objective {
	out := make([]Objective, 0, len(p.objectives))
	for _, o := range p.objectives {
		out = append(out, Objective{
			Name:         o.Name,
			Desirability: cloneRef(o.DesirabilityFunction),
			Weight:       cloneWeight(o.Weight),
			ValueType:    o.ValueType,
			Kind:         o.Kind,
		})
	}
	return out
}

// ObjectiveNames returns objective names in declaration order.
func (p *Profile) ObjectiveNames() []string {
	out := make([]string, 0, len(p.objectives))
	for _, o := range p.objectives {
		out = append(out, o.Name)
	}
	return out
}

// Aggregation returns the aggregation reference.
func (p *Profile) Aggregation() FunctionRef { return cloneRef(p.aggregation) }

// Weights returns objective weights in declaration order, or nil when the
// profile declares none.
func (p *Profile) Weights() []float64 {
	if len(p.objectives) == 0 || p.objectives[0].Weight == nil {
		return nil
	}
	out := make([]float64, 0, len(p.objectives))
	for _, o := range p.objectives {
		out = append(out, *o.Weight)
	}
	return out
}

// Description returns the serializable form of the profile.
func (p *Profile) Description() Description {
	d := Description{AggregationFunction: cloneRef(p.aggregation)}
	for _, o := range p.objectives {
		o.DesirabilityFunction = cloneRef(o.DesirabilityFunction)
		o.Weight = cloneWeight(o.Weight)
		d.Objectives = append(d.Objectives, o)
	}
	return d
}

func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Description())
}

func cloneWeight(w *float64) *float64 {
	if w == nil {
		return nil
	}
	v := *w
	return &v
}

func cloneRef(r FunctionRef) FunctionRef {
	out := FunctionRef{Name: r.Name, Parameters: make(map[string]any, len(r.Parameters))}
	for k, v := range r.Parameters {
		out.Parameters[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies decoded JSON values. Canonical profiles hold only
// decoded JSON, so other types cannot occur.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
