package scoring

import (
	"math"
	"sort"
)

// Ranked is a scored record in ranking order.
type Ranked struct {
	ID     string `json:"id"`
	Rank   int    `json:"rank"`
	Result Result `json:"result"`
}

// Rank orders results by aggregated score, highest first, ties broken by id.
// Ranks start at 1 and tied scores share a rank.
func Rank(results map[string]Result) []Ranked {
	out := make([]Ranked, 0, len(results))
	for id, r := range results {
		out = append(out, Ranked{ID: id, Result: r})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Result.AggregatedScore, out[j].Result.AggregatedScore
		if a != b {
			return a > b
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		if i > 0 && out[i].Result.AggregatedScore == out[i-1].Result.AggregatedScore {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// ParetoCandidate is a record's desirability vector. Higher is better in
// every dimension.
type ParetoCandidate struct {
	ID     string    `json:"id"`
	Scores []float64 `json:"scores"`
}

// Candidates builds Pareto candidates from results over the given objectives,
// in id order. Absent scores count as zero.
func Candidates(results map[string]Result, objectives []string) []ParetoCandidate {
	out := make([]ParetoCandidate, 0, len(results))
	for _, id := range sortedKeys(results) {
		r := results[id]
		c := ParetoCandidate{ID: id, Scores: make([]float64, len(objectives))}
		for i, name := range objectives {
			v, ok := r.DesirabilityScores[name]
			if !ok || math.IsNaN(v) {
				v = 0
			}
			c.Scores[i] = v
		}
		out = append(out, c)
	}
	return out
}

// ComputeFrontier returns the candidates no other candidate dominates.
// O(n^2) dominance check, fine for interactive batch sizes.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates reports whether a is at least as good as b everywhere and
// strictly better somewhere.
func dominates(a, b ParetoCandidate) bool {
	if len(a.Scores) != len(b.Scores) {
		return false
	}
	better := false
	for i := range a.Scores {
		if a.Scores[i] < b.Scores[i] {
			return false
		}
		if a.Scores[i] > b.Scores[i] {
			better = true
		}
	}
	return better
}

// ParetoFrontier returns the ids of results on the desirability frontier of
// the scorer's objectives.
func (s *Scorer) ParetoFrontier(results map[string]Result) []string {
	frontier := ComputeFrontier(Candidates(results, s.profile.ObjectiveNames()))
	ids := make([]string, 0, len(frontier))
	for _, c := range frontier {
		ids = append(ids, c.ID)
	}
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
