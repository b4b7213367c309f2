package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

func float64Ptr(v float64) *float64 { return &v }

func sigmoidObjective(name string, weight *float64) ObjectiveSpec {
	return ObjectiveSpec{
		Name: name,
		DesirabilityFunction: FunctionRef{
			Name:       "sigmoid",
			Parameters: map[string]any{"low": 0.0, "high": 1.0},
		},
		Weight: weight,
	}
}

func validDescription() Description {
	return Description{
		Objectives: []ObjectiveSpec{
			sigmoidObjective("a", nil),
			sigmoidObjective("b", nil),
		},
		AggregationFunction: FunctionRef{Name: "arithmetic_mean"},
	}
}

func issuePaths(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	var paths []string
	for _, i := range ve.Issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidateAccepts(t *testing.T) {
	p, err := Validate(validDescription(), DefaultCatalogues())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.ObjectiveNames())
	assert.Nil(t, p.Weights())
	assert.Equal(t, "arithmetic_mean", p.Aggregation().Name)
	assert.NotNil(t, p.Aggregation().Parameters)
}

func TestValidateWeights(t *testing.T) {
	t.Run("all weighted", func(t *testing.T) {
		d := validDescription()
		d.Objectives[0].Weight = float64Ptr(1)
		d.Objectives[1].Weight = float64Ptr(2)
		p, err := Validate(d, DefaultCatalogues())
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2}, p.Weights())
	})

	t.Run("partially weighted", func(t *testing.T) {
		d := validDescription()
		d.Objectives[0].Weight = float64Ptr(1)
		_, err := Validate(d, DefaultCatalogues())
		require.ErrorIs(t, err, ErrProfileInvalid)
		assert.Equal(t, []string{"objectives"}, issuePaths(t, err))
		assert.Contains(t, err.Error(), "all objectives or none")
	})

	t.Run("negative", func(t *testing.T) {
		d := validDescription()
		d.Objectives[0].Weight = float64Ptr(-1)
		d.Objectives[1].Weight = float64Ptr(1)
		_, err := Validate(d, DefaultCatalogues())
		assert.ErrorIs(t, err, strategy.ErrOutOfRange)
		assert.Equal(t, []string{"objectives[0].weight"}, issuePaths(t, err))
	})

	t.Run("all zero", func(t *testing.T) {
		d := validDescription()
		d.Objectives[0].Weight = float64Ptr(0)
		d.Objectives[1].Weight = float64Ptr(0)
		p, err := Validate(d, DefaultCatalogues())
		assert.Nil(t, p)
		require.ErrorIs(t, err, ErrProfileInvalid)
		assert.ErrorIs(t, err, strategy.ErrOutOfRange)
		assert.Equal(t, []string{"objectives"}, issuePaths(t, err))
	})

	t.Run("some zero", func(t *testing.T) {
		d := validDescription()
		d.Objectives[0].Weight = float64Ptr(0)
		d.Objectives[1].Weight = float64Ptr(1)
		_, err := Validate(d, DefaultCatalogues())
		assert.NoError(t, err)
	})
}

func TestValidateDuplicateNames(t *testing.T) {
	d := validDescription()
	d.Objectives[1].Name = "a"
	_, err := Validate(d, DefaultCatalogues())
	require.ErrorIs(t, err, ErrProfileInvalid)
	assert.Equal(t, []string{"objectives[1].name"}, issuePaths(t, err))
}

func TestValidateUnknownNames(t *testing.T) {
	d := validDescription()
	d.Objectives[0].DesirabilityFunction.Name = "parabola"
	d.AggregationFunction.Name = "median"

	_, err := Validate(d, DefaultCatalogues())
	require.ErrorIs(t, err, ErrProfileInvalid)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	assert.Equal(t, []string{
		"objectives[0].desirability_function.name",
		"aggregation_function.name",
	}, issuePaths(t, err))
	assert.Contains(t, err.Error(), "sigmoid")
}

func TestValidateParameters(t *testing.T) {
	d := validDescription()
	d.Objectives[0].DesirabilityFunction.Parameters = map[string]any{"low": 0.0}
	d.Objectives[1].DesirabilityFunction.Parameters["k"] = 5.0

	_, err := Validate(d, DefaultCatalogues())
	require.ErrorIs(t, err, ErrProfileInvalid)
	assert.ErrorIs(t, err, strategy.ErrMissingParameter)
	assert.ErrorIs(t, err, strategy.ErrOutOfRange)

	var pe *strategy.ParameterError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "k", pe.Parameter)
}

func TestValidateCollectsAllIssues(t *testing.T) {
	d := Description{
		Objectives: []ObjectiveSpec{
			sigmoidObjective("x", float64Ptr(1)),
			sigmoidObjective("x", nil),
			{Name: "y", DesirabilityFunction: FunctionRef{Name: "nope"}, Kind: "ordinal"},
		},
		AggregationFunction: FunctionRef{Name: "geometric_mean", Parameters: map[string]any{"ideal_value": 1.0}},
	}
	_, err := Validate(d, DefaultCatalogues())
	paths := issuePaths(t, err)
	assert.Contains(t, paths, "objectives[2].desirability_function.name")
	assert.Contains(t, paths, "aggregation_function.parameters")
	assert.Contains(t, paths, "objectives[1].name")
	assert.Contains(t, paths, "objectives")
}

func TestValidateEmpty(t *testing.T) {
	_, err := Validate(Description{AggregationFunction: FunctionRef{Name: "summation"}}, DefaultCatalogues())
	assert.ErrorIs(t, err, ErrProfileInvalid)
}

func TestProfileIsImmutable(t *testing.T) {
	d := validDescription()
	d.Objectives[0].Weight = float64Ptr(1)
	d.Objectives[1].Weight = float64Ptr(1)
	p, err := Validate(d, DefaultCatalogues())
	require.NoError(t, err)

	d.Objectives[0].DesirabilityFunction.Parameters["low"] = 99.0
	*d.Objectives[0].Weight = 7

	objs := p.Objectives()
	objs[0].Desirability.Parameters["low"] = 42.0
	*objs[0].Weight = 9
	p.Weights()[0] = 5

	again := p.Objectives()
	assert.Equal(t, json.Number("0"), again[0].Desirability.Parameters["low"])
	assert.Equal(t, 1.0, *again[0].Weight)
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	_, err := ParseJSON([]byte(`{"objectives": [], "aggregation_function": {"name": "summation"}, "extra": 1}`))
	assert.ErrorIs(t, err, ErrProfileInvalid)

	_, err = ParseJSON([]byte(`{"objectives": [`))
	assert.ErrorIs(t, err, ErrProfileInvalid)
}

func TestReadExampleFiles(t *testing.T) {
	cats := DefaultCatalogues()

	p, err := LoadFile("testdata/example.json", cats)
	require.NoError(t, err)
	assert.Equal(t, []string{"quality", "efficiency", "cost"}, p.ObjectiveNames())
	assert.Equal(t, []float64{1, 2, 3}, p.Weights())
	assert.Equal(t, "geometric_mean", p.Aggregation().Name)

	p, err = LoadFile("testdata/mixed.yaml", cats)
	require.NoError(t, err)
	objs := p.Objectives()
	require.Len(t, objs, 3)
	assert.Equal(t, "multistep", objs[0].Desirability.Name)
	assert.Equal(t, "categorical", objs[1].Kind)
	assert.Equal(t, "deviation_index", p.Aggregation().Name)
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("profile.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported profile extension")
}

func TestWriteReadRoundTrip(t *testing.T) {
	cats := DefaultCatalogues()
	src, err := LoadFile("testdata/mixed.yaml", cats)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, src))

			back, err := LoadFile(path, cats)
			require.NoError(t, err)

			want, err := json.Marshal(src)
			require.NoError(t, err)
			got, err := json.Marshal(back)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestWriteFileJSONIndent(t *testing.T) {
	p, err := Validate(validDescription(), DefaultCatalogues())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, WriteFile(path, p))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"objectives\""))
	assert.Contains(t, string(data), `"parameters": {}`)
}
