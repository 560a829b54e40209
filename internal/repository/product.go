package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

const productColumns = `id::text, name, description, category, tags, purchase_count, average_rating`

func scanProduct(row pgx.Rows) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Tags, &p.PurchaseCount, &p.AverageRating)
	return p, err
}

func popularityOrder(byRating bool) string {
	if byRating {
		return `ORDER BY purchase_count DESC, average_rating DESC, id::text ASC`
	}
	return `ORDER BY purchase_count DESC, id::text ASC`
}

func (r *Repository) ProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	p := &domain.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1::uuid`, productID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Tags, &p.PurchaseCount, &p.AverageRating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, dataErr("query product id="+productID, err)
	}
	return p, nil
}

func (r *Repository) ProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id::text = ANY($1)`, ids,
	)
	if err != nil {
		return nil, dataErr("query products by id", err)
	}
	return collect(rows, "product", scanProduct)
}

// ProductsMatching returns products whose category is one of categories or
// whose tags intersect tags, minus exclude, most purchased and best rated
// first.
func (r *Repository) ProductsMatching(ctx context.Context, categories, tags, exclude []string, limit int) ([]domain.Product, error) {
	if categories == nil {
		categories = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		FROM products
		WHERE (category = ANY($1) OR tags && $2::text[])
		  AND NOT (id::text = ANY($3))
		`+popularityOrder(true)+`
		LIMIT $4`, categories, tags, exclude, limit,
	)
	if err != nil {
		return nil, dataErr("query matching products", err)
	}
	return collect(rows, "product", scanProduct)
}

// PopularProducts ranks the whole catalog by purchase count, using average
// rating as the second key when byRating is set.
func (r *Repository) PopularProducts(ctx context.Context, limit int, byRating bool) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products `+popularityOrder(byRating)+` LIMIT $1`, limit,
	)
	if err != nil {
		return nil, dataErr("query popular products", err)
	}
	return collect(rows, "product", scanProduct)
}

func (r *Repository) ProductsInCategory(ctx context.Context, category, excludeID string, limit int, byRating bool) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		FROM products
		WHERE category = $1 AND id::text <> $2
		`+popularityOrder(byRating)+`
		LIMIT $3`, category, excludeID, limit,
	)
	if err != nil {
		return nil, dataErr("query products in category "+category, err)
	}
	return collect(rows, "product", scanProduct)
}

// AllProducts loads the catalog for training.
func (r *Repository) AllProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, dataErr("query all products", err)
	}
	return collect(rows, "product", scanProduct)
}
