package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

const neighborCount = 10

// CollaborativeGenerator recommends what the users with the most
// purchases in common with the target went on to buy. Overlap is
// recomputed from live purchase data on every call; the trained user
// similarity matrix is not consulted.
type CollaborativeGenerator struct {
	src DataSource
}

func NewCollaborativeGenerator(src DataSource) *CollaborativeGenerator {
	return &CollaborativeGenerator{src: src}
}

type neighbor struct {
	userID  string
	overlap int
}

// Generate returns up to limit product ids. purchased is the target's
// purchase set; it is both the overlap basis and the exclusion set.
func (g *CollaborativeGenerator) Generate(ctx context.Context, userID string, purchased map[string]struct{}, limit int) ([]domain.ScoredCandidate, error) {
	if len(purchased) == 0 || limit <= 0 {
		return nil, nil
	}

	purchases, err := g.src.InteractionsByType(ctx, domain.InteractionPurchase)
	if err != nil {
		return nil, fmt.Errorf("fetch purchases: %w", err)
	}

	overlap := make(map[string]int)
	for _, it := range purchases {
		if it.UserID == userID {
			continue
		}
		if _, ok := purchased[it.ProductID]; ok {
			overlap[it.UserID]++
		}
	}

	neighbors := make([]neighbor, 0, len(overlap))
	for id, n := range overlap {
		neighbors = append(neighbors, neighbor{userID: id, overlap: n})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].overlap != neighbors[j].overlap {
			return neighbors[i].overlap > neighbors[j].overlap
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > neighborCount {
		neighbors = neighbors[:neighborCount]
	}

	scores := make(map[string]float64)
	for _, nb := range neighbors {
		history, err := g.src.UserInteractionsByType(ctx, nb.userID, domain.InteractionPurchase)
		if err != nil {
			return nil, fmt.Errorf("fetch purchases of neighbor %s: %w", nb.userID, err)
		}
		for _, it := range history {
			if _, excluded := purchased[it.ProductID]; excluded {
				continue
			}
			scores[it.ProductID] += float64(nb.overlap)
		}
	}

	return rankScores(scores, domain.SourceCollaborative, limit), nil
}

// rankScores orders scores descending with product id as the tie-break.
func rankScores(scores map[string]float64, source string, limit int) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(scores))
	for id, s := range scores {
		out = append(out, domain.ScoredCandidate{ProductID: id, Score: s, Source: source})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func candidateIDs(cands []domain.ScoredCandidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.ProductID
	}
	return ids
}
