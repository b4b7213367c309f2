package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/Scorecard/internal/profile"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

type ProfileEvent struct {
	ProfileID string `json:"profile_id"`
	Name      string `json:"name"`
}

// ScoreRequestEvent asks for a batch of records to be scored against a stored
// profile (ProfileID) or an inline one (Profile).
type ScoreRequestEvent struct {
	RequestID string                    `json:"request_id"`
	ProfileID string                    `json:"profile_id,omitempty"`
	Profile   *profile.Description      `json:"profile,omitempty"`
	Records   map[string]map[string]any `json:"records"`
}

type ScoreCompletedEvent struct {
	RequestID  string                    `json:"request_id"`
	ProfileID  string                    `json:"profile_id,omitempty"`
	Results    map[string]scoring.Result `json:"results"`
	Ranking    []scoring.Ranked          `json:"ranking"`
	Frontier   []string                  `json:"pareto_frontier"`
	DurationMs int64                     `json:"duration_ms"`
}

type ScoreFailedEvent struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

type StatsEvent struct {
	Requests       int64     `json:"requests"`
	Completed      int64     `json:"completed"`
	Failed         int64     `json:"failed"`
	CachedProfiles int       `json:"cached_profiles"`
	Timestamp      time.Time `json:"timestamp"`
}
