package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordScore(3 * time.Millisecond)
	m.RecordScore(time.Millisecond)
	m.RecordError("missing_objective")
	m.RecordDropped(2)
	m.RecordValidation(true)
	m.RecordValidation(false)
	m.RecordValidation(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("missing_objective")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("invalid")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
