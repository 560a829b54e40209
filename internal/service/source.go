package service

import (
	"context"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/model"
	"github.com/actuallystonmai/product-recommender/internal/store"
)

// DataSource is the read-only view of interactions and the catalog that
// serving and training need. *repository.Repository implements it.
type DataSource interface {
	InteractionsByUser(ctx context.Context, userID string, limit int) ([]domain.Interaction, error)
	InteractionsByType(ctx context.Context, typ domain.InteractionType) ([]domain.Interaction, error)
	UserInteractionsByType(ctx context.Context, userID string, typ domain.InteractionType) ([]domain.Interaction, error)
	AllInteractions(ctx context.Context) ([]domain.Interaction, error)

	ProductByID(ctx context.Context, productID string) (*domain.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ProductsMatching(ctx context.Context, categories, tags, exclude []string, limit int) ([]domain.Product, error)
	PopularProducts(ctx context.Context, limit int, byRating bool) ([]domain.Product, error)
	ProductsInCategory(ctx context.Context, category, excludeID string, limit int, byRating bool) ([]domain.Product, error)
	AllProducts(ctx context.Context) ([]domain.Product, error)
}

// ModelStore persists trained bundles; *store.Store implements it.
// SaveAll must not replace any bundle unless all of them were written.
type ModelStore interface {
	SaveAll(bundles map[string]any) error
	Load(kind string, dst any) (store.Metadata, error)
}

var _ ModelStore = (*store.Store)(nil)

// the bundle kinds a ModelStore is asked for
var modelKinds = []string{model.KindCollaborative, model.KindContent}

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
