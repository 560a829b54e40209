package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

const interactionColumns = `user_id::text, product_id::text, type, rating_value, created_at`

func scanInteraction(row pgx.Rows) (domain.Interaction, error) {
	var it domain.Interaction
	var typ string
	err := row.Scan(&it.UserID, &it.ProductID, &typ, &it.RatingValue, &it.Timestamp)
	it.Type = domain.InteractionType(typ)
	return it, err
}

// InteractionsByUser returns a user's interactions, most recent first.
func (r *Repository) InteractionsByUser(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, dataErr("query interactions for user "+userID, err)
	}
	return collect(rows, "interaction", scanInteraction)
}

// InteractionsByType returns every interaction of one type across all users.
func (r *Repository) InteractionsByType(ctx context.Context, typ domain.InteractionType) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interactionColumns+`
		FROM interactions
		WHERE type = $1`, string(typ),
	)
	if err != nil {
		return nil, dataErr("query "+string(typ)+" interactions", err)
	}
	return collect(rows, "interaction", scanInteraction)
}

func (r *Repository) UserInteractionsByType(ctx context.Context, userID string, typ domain.InteractionType) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_id = $1::uuid AND type = $2`, userID, string(typ),
	)
	if err != nil {
		return nil, dataErr("query "+string(typ)+" interactions for user "+userID, err)
	}
	return collect(rows, "interaction", scanInteraction)
}

// AllInteractions loads the full interaction set for training.
func (r *Repository) AllInteractions(ctx context.Context) ([]domain.Interaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interactionColumns+` FROM interactions ORDER BY id`,
	)
	if err != nil {
		return nil, dataErr("query all interactions", err)
	}
	return collect(rows, "interaction", scanInteraction)
}
