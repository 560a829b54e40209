package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity returns the row-by-row cosine similarity of rows.
// Any comparison that involves an all-zero row is 0, including the
// diagonal entry of that row. Cost is O(rows^2 * cols), fine for a store
// catalog and user base but not for web-scale corpora.
func CosineSimilarity(rows [][]float64) [][]float64 {
	n := len(rows)
	norms := make([]float64, n)
	for i, r := range rows {
		norms[i] = floats.Norm(r, 2)
	}

	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		sim[i][i] = 1
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			v := floats.Dot(rows[i], rows[j]) / (norms[i] * norms[j])
			// clamp rounding drift so callers can rely on [-1, 1]
			v = math.Max(-1, math.Min(1, v))
			sim[i][j] = v
			sim[j][i] = v
		}
	}
	return sim
}
