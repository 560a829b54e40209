package repository

import (
	"context"
	"errors"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

var errNoDatabase = errors.New("database not configured")

// Unavailable stands in for the repository when no database could be
// reached at startup. Every call fails with domain.ErrDataAccess.
type Unavailable struct{}

func (Unavailable) err(op string) error { return dataErr(op, errNoDatabase) }

func (u Unavailable) Ping(context.Context) error { return u.err("ping database") }

func (u Unavailable) InteractionsByUser(context.Context, string, int) ([]domain.Interaction, error) {
	return nil, u.err("query interactions for user")
}

func (u Unavailable) InteractionsByType(context.Context, domain.InteractionType) ([]domain.Interaction, error) {
	return nil, u.err("query interactions by type")
}

func (u Unavailable) UserInteractionsByType(context.Context, string, domain.InteractionType) ([]domain.Interaction, error) {
	return nil, u.err("query interactions for user")
}

func (u Unavailable) AllInteractions(context.Context) ([]domain.Interaction, error) {
	return nil, u.err("query all interactions")
}

func (u Unavailable) ProductByID(context.Context, string) (*domain.Product, error) {
	return nil, u.err("query product")
}

func (u Unavailable) ProductsByIDs(context.Context, []string) ([]domain.Product, error) {
	return nil, u.err("query products by id")
}

func (u Unavailable) ProductsMatching(context.Context, []string, []string, []string, int) ([]domain.Product, error) {
	return nil, u.err("query matching products")
}

func (u Unavailable) PopularProducts(context.Context, int, bool) ([]domain.Product, error) {
	return nil, u.err("query popular products")
}

func (u Unavailable) ProductsInCategory(context.Context, string, string, int, bool) ([]domain.Product, error) {
	return nil, u.err("query products in category")
}

func (u Unavailable) AllProducts(context.Context) ([]domain.Product, error) {
	return nil, u.err("query all products")
}
