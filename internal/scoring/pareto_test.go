package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParetoFrontier(t *testing.T) {
	candidates := []ParetoCandidate{
		{ID: "a", Scores: []float64{0.9, 0.8, 0.7}},
		{ID: "b", Scores: []float64{0.7, 0.9, 0.8}},
		{ID: "c", Scores: []float64{0.5, 0.5, 0.5}}, // dominated by a and b
	}

	frontier := ComputeFrontier(candidates)

	if len(frontier) != 2 {
		t.Errorf("expected 2 frontier members, got %d", len(frontier))
		for _, f := range frontier {
			t.Logf("  %s", f.ID)
		}
	}

	ids := make(map[string]bool)
	for _, f := range frontier {
		ids[f.ID] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Error("expected both a and b on frontier")
	}
	if ids["c"] {
		t.Error("c should be dominated")
	}
}

func TestParetoFrontierSingleCandidate(t *testing.T) {
	candidates := []ParetoCandidate{
		{ID: "only", Scores: []float64{0.5, 0.5}},
	}
	frontier := ComputeFrontier(candidates)
	if len(frontier) != 1 {
		t.Errorf("expected 1 frontier member, got %d", len(frontier))
	}
}

func TestParetoFrontierKeepsEqualCandidates(t *testing.T) {
	candidates := []ParetoCandidate{
		{ID: "x", Scores: []float64{0.5, 0.5}},
		{ID: "y", Scores: []float64{0.5, 0.5}},
	}
	assert.Len(t, ComputeFrontier(candidates), 2)
}

func TestCandidatesTreatAbsentAsZero(t *testing.T) {
	results := map[string]Result{
		"r2": {DesirabilityScores: map[string]float64{"a": 0.4, "b": math.NaN()}},
		"r1": {DesirabilityScores: map[string]float64{"a": 0.2}},
	}
	got := Candidates(results, []string{"a", "b"})
	assert.Equal(t, []ParetoCandidate{
		{ID: "r1", Scores: []float64{0.2, 0}},
		{ID: "r2", Scores: []float64{0.4, 0}},
	}, got)
}

func TestRank(t *testing.T) {
	results := map[string]Result{
		"low":   {AggregatedScore: 0.1},
		"high":  {AggregatedScore: 0.9},
		"tie-b": {AggregatedScore: 0.5},
		"tie-a": {AggregatedScore: 0.5},
	}
	ranked := Rank(results)

	var ids []string
	var ranks []int
	for _, r := range ranked {
		ids = append(ids, r.ID)
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low"}, ids)
	assert.Equal(t, []int{1, 2, 2, 4}, ranks)
}

func TestScorerParetoFrontier(t *testing.T) {
	s := newScorer(t)
	out, err := s.ScoreBatch(map[string]map[string]any{
		"good":  {"quality": 9.0, "efficiency": 0.9, "cost": 10.0},
		"cheap": {"quality": 2.0, "efficiency": 0.5, "cost": 1.0},
		"worse": {"quality": 1.5, "efficiency": 0.4, "cost": 70.0},
	})
	if err != nil {
		t.Fatalf("score batch: %v", err)
	}
	frontier := s.ParetoFrontier(out)
	assert.ElementsMatch(t, []string{"good", "cheap"}, frontier)
}
