// Package scoring turns raw records into aggregated multi-objective scores
// according to a validated profile.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Scorecard/internal/aggregation"
	"github.com/MikeSquared-Agency/Scorecard/internal/desirability"
	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
)

// ErrMissingObjective is returned under MissingError when a record lacks a
// value for a profile objective.
var ErrMissingObjective = errors.New("record is missing an objective value")

// MissingPolicy decides what happens when a record lacks an objective.
type MissingPolicy string

const (
	// MissingExclude leaves the objective out of the aggregation with a warning.
	MissingExclude MissingPolicy = "exclude"
	// MissingError fails the record.
	MissingError MissingPolicy = "error"
)

// ParseMissingPolicy accepts "exclude" or "error".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(s); p {
	case MissingExclude, MissingError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown missing objective policy %q (want exclude or error)", s)
	}
}

// Recorder receives scoring telemetry.
type Recorder interface {
	RecordScore(d time.Duration)
	RecordError(reason string)
	RecordDropped(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordScore(time.Duration) {}
func (nopRecorder) RecordError(string)        {}
func (nopRecorder) RecordDropped(int)         {}

// Result is the score of one record.
type Result struct {
	AggregatedScore    float64
	DesirabilityScores map[string]float64
	// Missing lists objectives the record had no value for.
	Missing []string
}

type resultJSON struct {
	AggregatedScore    *float64            `json:"aggregated_score"`
	DesirabilityScores map[string]*float64 `json:"desirability_scores"`
	Missing            []string            `json:"missing_objectives,omitempty"`
}

// MarshalJSON writes NaN scores as null.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		AggregatedScore:    nullable(r.AggregatedScore),
		DesirabilityScores: make(map[string]*float64, len(r.DesirabilityScores)),
		Missing:            r.Missing,
	}
	for k, v := range r.DesirabilityScores {
		out.DesirabilityScores[k] = nullable(v)
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.AggregatedScore = fromNullable(in.AggregatedScore)
	r.DesirabilityScores = make(map[string]float64, len(in.DesirabilityScores))
	for k, v := range in.DesirabilityScores {
		r.DesirabilityScores[k] = fromNullable(v)
	}
	r.Missing = in.Missing
	return nil
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func fromNullable(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

type boundObjective struct {
	name string
	fn   desirability.Function
}

// Scorer applies a profile to records. Strategies are instantiated once, on
// first use or by Build; afterwards the Scorer is read-only and safe for
// concurrent use.
type Scorer struct {
	profile  *profile.Profile
	cats     profile.Catalogues
	missing  MissingPolicy
	logger   *slog.Logger
	recorder Recorder

	once       sync.Once
	buildErr   error
	objectives []boundObjective
	aggregate  aggregation.Function
	weights    []float64
}

// Option configures a Scorer.
type Option func(*Scorer)

func WithMissingPolicy(p MissingPolicy) Option { return func(s *Scorer) { s.missing = p } }

func WithLogger(l *slog.Logger) Option { return func(s *Scorer) { s.logger = l } }

func WithRecorder(r Recorder) Option { return func(s *Scorer) { s.recorder = r } }

// NewScorer creates an unbuilt Scorer for p.
func NewScorer(p *profile.Profile, cats profile.Catalogues, opts ...Option) *Scorer {
	s := &Scorer{
		profile:  p,
		cats:     cats,
		missing:  MissingExclude,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the profile the scorer applies.
func (s *Scorer) Profile() *profile.Profile { return s.profile }

// Build instantiates every strategy named by the profile. It is idempotent;
// later calls return the first call's result.
func (s *Scorer) Build() error {
	s.once.Do(func() {
		s.buildErr = s.build()
	})
	return s.buildErr
}

func (s *Scorer) build() error {
	for _, o := range s.profile.Objectives() {
		fn, err := s.cats.NewDesirability(o.Desirability)
		if err != nil {
			return fmt.Errorf("objective %q: %w", o.Name, err)
		}
		s.objectives = append(s.objectives, boundObjective{name: o.Name, fn: fn})
	}
	agg, err := s.cats.NewAggregation(s.profile.Aggregation())
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}
	if ls, ok := agg.(aggregation.LoggerSetter); ok {
		ls.SetLogger(s.logger)
	}
	s.aggregate = agg
	s.weights = s.profile.Weights()
	return nil
}

// Compute scores one record keyed by objective name.
func (s *Scorer) Compute(record map[string]any) (Result, error) {
	if err := s.Build(); err != nil {
		s.recorder.RecordError("build")
		return Result{}, err
	}
	start := time.Now()

	res := Result{DesirabilityScores: make(map[string]float64, len(s.objectives))}
	scores := make([]float64, len(s.objectives))
	for i, o := range s.objectives {
		raw, ok := record[o.name]
		if !ok || raw == nil {
			if s.missing == MissingError {
				s.recorder.RecordError("missing_objective")
				return Result{}, fmt.Errorf("%w: %q", ErrMissingObjective, o.name)
			}
			res.Missing = append(res.Missing, o.name)
			scores[i] = math.NaN()
			res.DesirabilityScores[o.name] = math.NaN()
			continue
		}
		v, err := o.fn.Compute(raw)
		if err != nil {
			s.recorder.RecordError("desirability")
			return Result{}, fmt.Errorf("objective %q: %w", o.name, err)
		}
		scores[i] = v
		res.DesirabilityScores[o.name] = v
	}
	if len(res.Missing) > 0 {
		s.logger.Warn("record missing objectives", "objectives", res.Missing)
	}

	absent := 0
	for _, v := range scores {
		if math.IsNaN(v) {
			absent++
		}
	}
	if absent > 0 {
		s.recorder.RecordDropped(absent)
	}

	agg, err := s.aggregate.Compute(scores, s.weights)
	if err != nil {
		s.recorder.RecordError("aggregation")
		return Result{}, fmt.Errorf("aggregate: %w", err)
	}
	res.AggregatedScore = agg
	s.recorder.RecordScore(time.Since(start))
	return res, nil
}

// ScoreBatch scores each record in turn. The first failure aborts the batch
// and names the record.
func (s *Scorer) ScoreBatch(records map[string]map[string]any) (map[string]Result, error) {
	out := make(map[string]Result, len(records))
	for _, id := range sortedKeys(records) {
		r, err := s.Compute(records[id])
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", id, err)
		}
		out[id] = r
	}
	return out, nil
}
