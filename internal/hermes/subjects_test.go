package hermes

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "scorecard.profile.p1.created", SubjectProfileCreated("p1"))
	assert.Equal(t, "scorecard.profile.p1.deleted", SubjectProfileDeleted("p1"))
	assert.Equal(t, "scorecard.score.r1.completed", SubjectScoreCompleted("r1"))
	assert.Equal(t, "scorecard.score.r1.failed", SubjectScoreFailed("r1"))
}

func TestScoreCompletedEventEncodesAbsentScoresAsNull(t *testing.T) {
	evt := ScoreCompletedEvent{
		RequestID: "r1",
		Results: map[string]scoring.Result{
			"a": {AggregatedScore: 0.5, DesirabilityScores: map[string]float64{"x": 0.5, "y": math.NaN()}},
		},
	}
	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	scores := decoded["results"].(map[string]any)["a"].(map[string]any)["desirability_scores"].(map[string]any)
	assert.Nil(t, scores["y"])
	assert.Equal(t, 0.5, scores["x"])
}

func TestScoreRequestEventDecodes(t *testing.T) {
	raw := `{"request_id":"r1","profile_id":"abc","records":{"a":{"x":1,"label":"gold"}}}`
	var evt ScoreRequestEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, "r1", evt.RequestID)
	assert.Nil(t, evt.Profile)
	assert.Equal(t, "gold", evt.Records["a"]["label"])
}
