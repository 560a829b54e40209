package service

import (
	"context"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/metrics"
)

const (
	reasonNoHistory   = "no_history"
	reasonEmptyHybrid = "empty_hybrid"
	reasonNoContent   = "no_content_model"
)

// FallbackPolicy supplies popularity-ordered candidates when the
// personalised path has nothing to offer.
type FallbackPolicy struct {
	src DataSource
}

func NewFallbackPolicy(src DataSource) *FallbackPolicy {
	return &FallbackPolicy{src: src}
}

// Popular is used for users without any interaction history: purchase
// count descending, then average rating.
func (f *FallbackPolicy) Popular(ctx context.Context, limit int) ([]string, error) {
	metrics.FallbackActivations.WithLabelValues(reasonNoHistory).Inc()
	products, err := f.src.PopularProducts(ctx, limit, true)
	if err != nil {
		return nil, err
	}
	return productIDs(products), nil
}

// MostPurchased backs an empty hybrid result. Products in exclude are
// skipped so a user is never offered what they already bought.
func (f *FallbackPolicy) MostPurchased(ctx context.Context, limit int, exclude map[string]struct{}) ([]string, error) {
	metrics.FallbackActivations.WithLabelValues(reasonEmptyHybrid).Inc()
	products, err := f.src.PopularProducts(ctx, limit+len(exclude), false)
	if err != nil {
		return nil, err
	}
	return truncate(filterExcluded(productIDs(products), exclude), limit), nil
}

// SameCategory backs similar-product requests when no content model is
// loaded.
func (f *FallbackPolicy) SameCategory(ctx context.Context, subject *domain.Product, limit int) ([]string, error) {
	metrics.FallbackActivations.WithLabelValues(reasonNoContent).Inc()
	products, err := f.src.ProductsInCategory(ctx, subject.Category, subject.ID, limit, true)
	if err != nil {
		return nil, err
	}
	return productIDs(products), nil
}

func filterExcluded(ids []string, exclude map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := exclude[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

func truncate(ids []string, limit int) []string {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
