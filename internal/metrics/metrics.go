// Package metrics exposes scoring activity as Prometheus series.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements scoring.Recorder and the validation counters used by the API.
type Metrics struct {
	scored      prometheus.Counter
	errors      *prometheus.CounterVec
	dropped     prometheus.Counter
	validations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New registers the scorecard series on reg. Pass prometheus.DefaultRegisterer
// to serve them from promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scored: f.NewCounter(prometheus.CounterOpts{
			Name: "scorecard_records_scored_total",
			Help: "Records scored successfully.",
		}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scorecard_scoring_errors_total",
			Help: "Records that failed to score, by reason.",
		}, []string{"reason"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "scorecard_dropped_pairs_total",
			Help: "Objective scores left out of aggregation because they were absent.",
		}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scorecard_profile_validations_total",
			Help: "Profile validations, by result.",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorecard_score_duration_seconds",
			Help:    "Time to score one record.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

func (m *Metrics) RecordScore(d time.Duration) {
	m.scored.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) RecordError(reason string) { m.errors.WithLabelValues(reason).Inc() }

func (m *Metrics) RecordDropped(n int) { m.dropped.Add(float64(n)) }

// RecordValidation counts a profile validation outcome.
func (m *Metrics) RecordValidation(ok bool) {
	result := "invalid"
	if ok {
		result = "valid"
	}
	m.validations.WithLabelValues(result).Inc()
}
