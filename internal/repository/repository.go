package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return dataErr("ping database", err)
	}
	return nil
}

// dataErr tags a driver error as domain.ErrDataAccess while keeping the
// original error in the chain.
func dataErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDataAccess, err)
}

// collect drains rows with scan, closing them and reporting iteration
// errors as data access failures.
func collect[T any](rows pgx.Rows, op string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, dataErr("scan "+op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate "+op, err)
	}
	return items, nil
}
