package model

import (
	"math"
	"sort"
)

const (
	CollaborativeWeight = 0.6
	ContentWeight       = 0.4
)

// Blend merges the collaborative and content-based ranked lists into one
// ranking. Position i of a list of length n scores weight*(n-i)/n; scores
// are summed per product. Equal scores are ordered by product id.
func Blend(collaborative, content []string, limit int) []string {
	scores := blendScores(collaborative, content)

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func blendScores(collaborative, content []string) map[string]float64 {
	scores := make(map[string]float64, len(collaborative)+len(content))
	addPositional(scores, collaborative, CollaborativeWeight)
	addPositional(scores, content, ContentWeight)
	for id, s := range scores {
		// 0.6*(1/3) and 0.4*(1/2) must compare equal
		scores[id] = math.Round(s*1e9) / 1e9
	}
	return scores
}

func addPositional(scores map[string]float64, ranked []string, weight float64) {
	n := len(ranked)
	for i, id := range ranked {
		scores[id] += weight * float64(n-i) / float64(n)
	}
}
