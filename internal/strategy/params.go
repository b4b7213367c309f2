package strategy

import (
	"fmt"
	"sort"
)

// Strategy is a named, parametrized computation.
type Strategy interface {
	Name() string
	Params() *Params
}

// Validator is implemented by strategies with constraints spanning several
// parameters. Validate runs after every mandatory parameter is set.
type Validator interface {
	Validate() error
}

// Verify checks that s is ready to compute: all mandatory parameters are set
// and any cross-parameter constraints hold.
func Verify(s Strategy) error {
	if err := s.Params().Ready(); err != nil {
		return err
	}
	if v, ok := s.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}

// Params is the ordered parameter set of one strategy instance.
type Params struct {
	strategy string
	order    []string
	byName   map[string]*Parameter
}

// NewParams builds a parameter set from declarations, in declaration order.
func NewParams(strategy string, specs []Spec) *Params {
	p := &Params{
		strategy: strategy,
		order:    make([]string, 0, len(specs)),
		byName:   make(map[string]*Parameter, len(specs)),
	}
	for _, s := range specs {
		p.order = append(p.order, s.Name)
		p.byName[s.Name] = NewParameter(s)
	}
	return p
}

// Specs returns the parameter declarations in declaration order.
func (p *Params) Specs() []Spec {
	out := make([]Spec, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.byName[name].Spec())
	}
	return out
}

// Values returns the current value of every parameter, nil for absent ones.
func (p *Params) Values() map[string]any {
	out := make(map[string]any, len(p.order))
	for _, name := range p.order {
		out[name] = p.byName[name].Get()
	}
	return out
}

// Set assigns one parameter.
func (p *Params) Set(name string, v any) error {
	param, ok := p.byName[name]
	if !ok {
		return &ParameterError{Strategy: p.strategy, Parameter: name, Err: ErrUnknownParameter}
	}
	if err := param.Set(v); err != nil {
		return &ParameterError{Strategy: p.strategy, Parameter: name, Err: err}
	}
	return nil
}

// SetValues assigns each entry of values. Unknown names are reported before
// anything is assigned; known names are then applied in declaration order and
// the first failure is returned, leaving earlier assignments in place.
func (p *Params) SetValues(values map[string]any) error {
	return p.apply(values, false)
}

// Load is SetValues for decoded input: numbers are coerced to the declared
// kind before assignment.
func (p *Params) Load(values map[string]any) error {
	return p.apply(values, true)
}

func (p *Params) apply(values map[string]any, coerce bool) error {
	if len(values) == 0 {
		return nil
	}
	unknown := make([]string, 0)
	for name := range values {
		if _, ok := p.byName[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ParameterError{Strategy: p.strategy, Parameter: unknown[0], Err: ErrUnknownParameter}
	}

	for _, name := range p.order {
		v, ok := values[name]
		if !ok {
			continue
		}
		if coerce && v != nil {
			c, err := Coerce(p.byName[name].Spec(), v)
			if err != nil {
				return &ParameterError{Strategy: p.strategy, Parameter: name, Err: err}
			}
			v = c
		}
		if err := p.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a parameter's current value, or nil when absent or undeclared.
func (p *Params) Get(name string) any {
	if param, ok := p.byName[name]; ok {
		return param.Get()
	}
	return nil
}

// Float returns a float parameter, zero when absent.
func (p *Params) Float(name string) float64 {
	f, _ := p.Get(name).(float64)
	return f
}

// Bool returns a bool parameter, false when absent.
func (p *Params) Bool(name string) bool {
	b, _ := p.Get(name).(bool)
	return b
}

// Ready returns a *MissingParametersError naming every mandatory parameter
// without a value.
func (p *Params) Ready() error {
	var missing []string
	for _, name := range p.order {
		param := p.byName[name]
		if param.Spec().Mandatory() && !param.IsSet() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingParametersError{Strategy: p.strategy, Names: missing}
	}
	return nil
}
