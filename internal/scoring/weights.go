package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// ObjectiveScore is one row of a score breakdown.
type ObjectiveScore struct {
	Name  string  `json:"name"`
	Raw   any     `json:"raw"`
	Score float64 `json:"score"`
	// Weight is the objective's share of the total weight.
	Weight float64 `json:"weight"`
	Absent bool    `json:"absent,omitempty"`
}

// MarshalJSON writes an absent score as null.
func (o ObjectiveScore) MarshalJSON() ([]byte, error) {
	type alias ObjectiveScore
	return json.Marshal(struct {
		alias
		Score *float64 `json:"score"`
	}{alias(o), nullable(o.Score)})
}

// Explanation shows how a record's aggregated score was reached.
type Explanation struct {
	Aggregation string           `json:"aggregation"`
	Score       float64          `json:"aggregated_score"`
	Objectives  []ObjectiveScore `json:"objectives"`
}

// NormalizeWeights scales weights to sum to one. A nil input yields equal weights.
func NormalizeWeights(weights []float64, n int) ([]float64, error) {
	if weights == nil {
		out := make([]float64, n)
		for i := range out {
			out[i] = 1 / float64(n)
		}
		return out, nil
	}
	if len(weights) != n {
		return nil, fmt.Errorf("%d weights for %d objectives", len(weights), n)
	}
	var sum float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("invalid weight: %v", w)
		}
		sum += w
	}
	if sum == 0 {
		return nil, fmt.Errorf("weights sum to zero")
	}
	out := make([]float64, n)
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// Explain scores record and returns the per-objective breakdown. Weights are
// shares of the profile's declared weights; absent objectives keep their
// declared share but are flagged.
func (s *Scorer) Explain(record map[string]any) (Explanation, error) {
	res, err := s.Compute(record)
	if err != nil {
		return Explanation{}, err
	}
	shares, err := NormalizeWeights(s.weights, len(s.objectives))
	if err != nil {
		return Explanation{}, err
	}

	exp := Explanation{
		Aggregation: s.aggregate.Name(),
		Score:       res.AggregatedScore,
		Objectives:  make([]ObjectiveScore, 0, len(s.objectives)),
	}
	for i, o := range s.objectives {
		score := res.DesirabilityScores[o.name]
		exp.Objectives = append(exp.Objectives, ObjectiveScore{
			Name:   o.name,
			Raw:    record[o.name],
			Score:  score,
			Weight: shares[i],
			Absent: math.IsNaN(score),
		})
	}
	return exp, nil
}
