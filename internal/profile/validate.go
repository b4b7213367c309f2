package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/Scorecard/internal/aggregation"
	"github.com/MikeSquared-Agency/Scorecard/internal/desirability"
	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

// Catalogues bundles the two strategy families a profile refers to.
type Catalogues struct {
	Desirability *desirability.Catalogue
	Aggregation  *aggregation.Catalogue
}

// DefaultCatalogues returns catalogues holding every built-in strategy.
func DefaultCatalogues() Catalogues {
	return Catalogues{
		Desirability: desirability.NewCatalogue(),
		Aggregation:  aggregation.NewCatalogue(),
	}
}

// NewDesirability instantiates ref from decoded parameters and checks it is
// ready to compute.
func (c Catalogues) NewDesirability(ref FunctionRef) (desirability.Function, error) {
	f, err := c.Desirability.Blank(ref.Name)
	if err != nil {
		return nil, err
	}
	if err := configure(f, ref.Parameters); err != nil {
		return nil, err
	}
	return f, nil
}

// NewAggregation instantiates ref from decoded parameters and checks it is
// ready to compute.
func (c Catalogues) NewAggregation(ref FunctionRef) (aggregation.Function, error) {
	f, err := c.Aggregation.Blank(ref.Name)
	if err != nil {
		return nil, err
	}
	if err := configure(f, ref.Parameters); err != nil {
		return nil, err
	}
	return f, nil
}

func configure(s strategy.Strategy, params map[string]any) error {
	if err := s.Params().Load(params); err != nil {
		return err
	}
	return strategy.Verify(s)
}

// Issue is one validation failure located by its path in the document.
type Issue struct {
	Path string
	Err  error
}

func (i Issue) Error() string { return i.Path + ": " + i.Err.Error() }

func (i Issue) Unwrap() error { return i.Err }

// ValidationError collects every issue found in one validation pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, i.Error())
	}
	return fmt.Sprintf("%v: %s", ErrProfileInvalid, strings.Join(parts, "; "))
}

// Unwrap exposes ErrProfileInvalid and each issue's cause to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrProfileInvalid}
	for _, i := range e.Issues {
		errs = append(errs, i.Err)
	}
	return errs
}

var (
	valueTypes = map[string]bool{"": true, "float": true, "str": true, "bool": true}
	kinds      = map[string]bool{"": true, "numerical": true, "categorical": true}
)

// Validate checks desc against cats and returns an immutable Profile. All
// issues are reported together; no Profile is returned when any exist.
func Validate(desc Description, cats Catalogues) (*Profile, error) {
	var issues []Issue
	add := func(path string, err error) { issues = append(issues, Issue{Path: path, Err: err}) }

	// non-finite numbers have no JSON form, so they are caught before canonical
	for i, o := range desc.Objectives {
		if o.Weight != nil && (math.IsNaN(*o.Weight) || math.IsInf(*o.Weight, 0)) {
			add(fmt.Sprintf("objectives[%d].weight", i),
				fmt.Errorf("%w: weight %v must be finite", strategy.ErrOutOfRange, *o.Weight))
		}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	canon, err := canonical(desc)
	if err != nil {
		return nil, &ValidationError{Issues: []Issue{{Path: "parameters", Err: err}}}
	}

	if len(canon.Objectives) == 0 {
		add("objectives", errors.New("at least one objective is required"))
	}

	// names resolve, then parameters validate for those that resolved
	for i, o := range canon.Objectives {
		path := fmt.Sprintf("objectives[%d]", i)
		if o.Name == "" {
			add(path+".name", errors.New("objective name is empty"))
		}
		ref := o.DesirabilityFunction
		if _, err := cats.Desirability.Get(ref.Name); err != nil {
			add(path+".desirability_function.name", err)
			continue
		}
		if _, err := cats.NewDesirability(ref); err != nil {
			add(path+".desirability_function.parameters", err)
		}
		if !valueTypes[o.ValueType] {
			add(path+".value_type", fmt.Errorf("%q is not one of float, str, bool", o.ValueType))
		}
		if !kinds[o.Kind] {
			add(path+".kind", fmt.Errorf("%q is not one of numerical, categorical", o.Kind))
		}
	}
	agg := canon.AggregationFunction
	if _, err := cats.Aggregation.Get(agg.Name); err != nil {
		add("aggregation_function.name", err)
	} else if _, err := cats.NewAggregation(agg); err != nil {
		add("aggregation_function.parameters", err)
	}

	seen := make(map[string]int, len(canon.Objectives))
	for i, o := range canon.Objectives {
		if first, dup := seen[o.Name]; dup {
			add(fmt.Sprintf("objectives[%d].name", i),
				fmt.Errorf("duplicate objective name %q (first at objectives[%d])", o.Name, first))
			continue
		}
		seen[o.Name] = i
	}

	weighted := 0
	var total float64
	for i, o := range canon.Objectives {
		if o.Weight == nil {
			continue
		}
		weighted++
		total += *o.Weight
		if w := *o.Weight; w < 0 {
			add(fmt.Sprintf("objectives[%d].weight", i),
				fmt.Errorf("%w: weight %v must be non-negative", strategy.ErrOutOfRange, w))
		}
	}
	if weighted > 0 && weighted < len(canon.Objectives) {
		add("objectives", fmt.Errorf("weights must be given for all objectives or none (%d of %d weighted)",
			weighted, len(canon.Objectives)))
	}
	if weighted > 0 && weighted == len(canon.Objectives) && total == 0 {
		add("objectives", fmt.Errorf("%w: weights sum to zero", strategy.ErrOutOfRange))
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &Profile{objectives: canon.Objectives, aggregation: canon.AggregationFunction}, nil
}

// canonical deep-copies desc through JSON so the profile holds only decoded
// JSON values and shares nothing with the caller.
func canonical(desc Description) (Description, error) {
	raw, err := json.Marshal(desc)
	if err != nil {
		return Description{}, fmt.Errorf("encode: %w", err)
	}
	var out Description
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return Description{}, fmt.Errorf("decode: %w", err)
	}
	for i := range out.Objectives {
		if out.Objectives[i].DesirabilityFunction.Parameters == nil {
			out.Objectives[i].DesirabilityFunction.Parameters = map[string]any{}
		}
	}
	if out.AggregationFunction.Parameters == nil {
		out.AggregationFunction.Parameters = map[string]any{}
	}
	return out, nil
}
