package aggregation

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Scorecard/internal/strategy"
)

const tol = 1e-9

var (
	refValues  = []float64{1.5, 2.5, 3.5}
	refWeights = []float64{0.5, 0.3, 0.2}
)

func quiet(f Function) Function {
	if ls, ok := f.(LoggerSetter); ok {
		ls.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	return f
}

func mustNew(t *testing.T, key string, params map[string]any) Function {
	t.Helper()
	f, err := NewCatalogue().New(key, params)
	require.NoError(t, err)
	return quiet(f)
}

func TestReferenceValues(t *testing.T) {
	tests := []struct {
		key     string
		weights []float64
		want    float64
	}{
		{"arithmetic_mean", nil, 2.5},
		{"arithmetic_mean", refWeights, 2.2},
		{"geometric_mean", nil, 2.358846990158267},
		{"geometric_mean", refWeights, 2.0712915860569248},
		{"harmonic_mean", nil, 2.2183098591549295},
		{"harmonic_mean", refWeights, 1.9589552238805972},
		{"summation", refWeights, 2.2},
		{"product", refWeights, 2.0712915860569248},
	}
	for _, tt := range tests {
		name := tt.key
		if tt.weights == nil {
			name += "/equal"
		}
		t.Run(name, func(t *testing.T) {
			got, err := mustNew(t, tt.key, nil).Compute(refValues, tt.weights)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tol)
		})
	}
}

func TestDefaultWeightsEqualExplicitEqualWeights(t *testing.T) {
	values := []float64{0.1, 0.5, 0.6}
	for _, key := range NewCatalogue().List() {
		t.Run(key, func(t *testing.T) {
			f := mustNew(t, key, nil)
			implicit, err := f.Compute(values, nil)
			require.NoError(t, err)
			explicit, err := f.Compute(values, []float64{1, 1, 1})
			require.NoError(t, err)
			assert.InDelta(t, explicit, implicit, tol)
		})
	}
}

func TestGeometricMeanScores(t *testing.T) {
	g := mustNew(t, "geometric_mean", nil)
	values := []float64{0.1, 0.5, 0.6}

	got, err := g.Compute(values, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.3107232505953859, got, tol)

	got, err = g.Compute(values, []float64{3, 5, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.31997441390517617, got, tol)
}

func TestWeightScaleInvariance(t *testing.T) {
	values := []float64{0.2, 0.9, 0.4}
	weights := []float64{1, 2, 3}
	scaled := []float64{10, 20, 30}
	for _, key := range NewCatalogue().List() {
		t.Run(key, func(t *testing.T) {
			f := mustNew(t, key, nil)
			a, err := f.Compute(values, weights)
			require.NoError(t, err)
			b, err := f.Compute(values, scaled)
			require.NoError(t, err)
			assert.InDelta(t, a, b, tol)
		})
	}
}

func TestDeviationIndex(t *testing.T) {
	d := mustNew(t, "deviation_index", nil)

	got, err := d.Compute([]float64{1, 1, 1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, tol)

	got, err = d.Compute([]float64{0.1, 0.5, 0.6}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.36229578434303367, got, tol)

	got, err = d.Compute([]float64{0.1, 0.5, 0.6}, []float64{3, 5, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.389133488610775, got, tol)

	custom := mustNew(t, "deviation_index", map[string]any{"ideal_value": 2.0})
	got, err = custom.Compute(refValues, refWeights)
	require.NoError(t, err)
	assert.InDelta(t, 0.32137910746170384, got, tol)
}

func TestZeroValues(t *testing.T) {
	for _, key := range []string{"geometric_mean", "harmonic_mean", "product"} {
		t.Run(key, func(t *testing.T) {
			got, err := mustNew(t, key, nil).Compute([]float64{0, 0.5}, nil)
			require.NoError(t, err)
			assert.Equal(t, 0.0, got)
		})
	}
}

func TestZeroWeightIgnoresValue(t *testing.T) {
	got, err := mustNew(t, "harmonic_mean", nil).Compute([]float64{0, 0.5}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, tol)
}

func TestAbsentPairsAreDropped(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewArithmeticMean(nil)
	require.NoError(t, err)
	f.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	got, err := f.Compute([]float64{0.2, math.NaN(), 0.6}, []float64{1, 5, math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got, tol)
	assert.Contains(t, buf.String(), "dropping absent value/weight pairs")
	assert.Contains(t, buf.String(), "arithmetic_mean")
}

func TestPipelineErrors(t *testing.T) {
	f := mustNew(t, "arithmetic_mean", nil)

	_, err := f.Compute([]float64{0.1, 0.2}, []float64{1})
	assert.ErrorIs(t, err, strategy.ErrInvalidInputShape)

	_, err = f.Compute([]float64{-0.1, 0.2}, nil)
	assert.ErrorIs(t, err, strategy.ErrOutOfRange)

	_, err = f.Compute([]float64{0.1, 0.2}, []float64{1, -1})
	assert.ErrorIs(t, err, strategy.ErrOutOfRange)

	_, err = f.Compute([]float64{0.1, 0.2}, []float64{0, 0})
	assert.ErrorIs(t, err, strategy.ErrOutOfRange)

	_, err = f.Compute([]float64{math.NaN()}, nil)
	assert.ErrorIs(t, err, strategy.ErrNoValidPairs)
	assert.ErrorIs(t, err, strategy.ErrInvalidInputShape)

	_, err = f.Compute(nil, nil)
	assert.ErrorIs(t, err, strategy.ErrNoValidPairs)
}

func TestPrepareNormalizes(t *testing.T) {
	p, err := Prepare([]float64{0.5, math.NaN(), 1}, []float64{1, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, p.Values)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, p.Weights, tol)
	assert.Equal(t, []int{1}, p.Dropped)
}

func TestAggregateLooseInput(t *testing.T) {
	f := mustNew(t, "arithmetic_mean", nil)

	got, err := Aggregate(f, []any{0.2, nil, 0.6}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, got, tol)

	got, err = Aggregate(f, []float64{0.2, 0.6}, []any{1.0, 3.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, tol)

	_, err = Aggregate(f, 0.5, nil)
	assert.ErrorIs(t, err, strategy.ErrInvalidInputShape)

	_, err = Aggregate(f, "0.5,0.6", nil)
	assert.ErrorIs(t, err, strategy.ErrInvalidInputShape)

	_, err = Aggregate(f, []any{"a", 0.6}, nil)
	assert.ErrorIs(t, err, strategy.ErrTypeMismatch)
}

func TestCatalogueKeys(t *testing.T) {
	assert.Equal(t, []string{
		"arithmetic_mean", "deviation_index", "geometric_mean",
		"harmonic_mean", "product", "summation",
	}, NewCatalogue().List())

	_, err := NewCatalogue().New("median", nil)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)

	_, err = NewCatalogue().New("geometric_mean", map[string]any{"ideal_value": 1.0})
	assert.ErrorIs(t, err, strategy.ErrUnknownParameter)
}
