package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

// ContentGenerator recommends products sharing a category or tag with a
// set of seed products, best sellers first. Like the collaborative side it
// works from the catalog directly rather than the trained similarity matrix.
type ContentGenerator struct {
	src DataSource
}

func NewContentGenerator(src DataSource) *ContentGenerator {
	return &ContentGenerator{src: src}
}

func (g *ContentGenerator) Generate(ctx context.Context, seeds []string, limit int) ([]domain.ScoredCandidate, error) {
	if len(seeds) == 0 || limit <= 0 {
		return nil, nil
	}

	products, err := g.src.ProductsByIDs(ctx, seeds)
	if err != nil {
		return nil, fmt.Errorf("fetch seed products: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	terms := attributeSet(products)
	matches, err := g.src.ProductsMatching(ctx, terms, terms, seeds, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch matching products: %w", err)
	}

	out := make([]domain.ScoredCandidate, len(matches))
	for i, p := range matches {
		out[i] = domain.ScoredCandidate{
			ProductID: p.ID,
			Score:     float64(len(matches) - i),
			Source:    domain.SourceContent,
		}
	}
	return out, nil
}

// attributeSet is the sorted union of the categories and tags of products.
func attributeSet(products []domain.Product) []string {
	set := make(map[string]struct{})
	for _, p := range products {
		if p.Category != "" {
			set[p.Category] = struct{}{}
		}
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
