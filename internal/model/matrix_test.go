package model

import (
	"errors"
	"testing"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestBuildInteractionMatrix(t *testing.T) {
	interactions := []domain.Interaction{
		{UserID: "u1", ProductID: "p1", Type: domain.InteractionView},
		{UserID: "u1", ProductID: "p1", Type: domain.InteractionCart},
		{UserID: "u1", ProductID: "p1", Type: domain.InteractionPurchase},
		{UserID: "u1", ProductID: "p2", Type: domain.InteractionRating, RatingValue: ptr(4)},
		{UserID: "u2", ProductID: "p2", Type: domain.InteractionRating},
		{UserID: "u2", ProductID: "p3", Type: "wishlist"},
	}

	m, err := BuildInteractionMatrix(interactions)
	if err != nil {
		t.Fatalf("BuildInteractionMatrix failed: %v", err)
	}

	users, products := m.Dims()
	if users != 2 || products != 3 {
		t.Fatalf("expected 2x3 matrix, got %dx%d", users, products)
	}

	cases := []struct {
		user, product string
		want          float64
	}{
		{"u1", "p1", 8}, // 1 + 2 + 5
		{"u1", "p2", 4},
		{"u1", "p3", 0},
		{"u2", "p2", 3}, // rating without value
		{"u2", "p3", 1}, // unknown type
		{"u3", "p1", 0},
	}
	for _, c := range cases {
		if got := cell(m, c.user, c.product); got != c.want {
			t.Errorf("cell(%s, %s): expected %v, got %v", c.user, c.product, c.want, got)
		}
	}

	// index maps must agree with the id slices
	for i, id := range m.UserIDs {
		if m.UserIndex[id] != i {
			t.Errorf("user index mismatch for %s", id)
		}
	}
	for j, id := range m.ProductIDs {
		if m.ProductIndex[id] != j {
			t.Errorf("product index mismatch for %s", id)
		}
	}
}

func TestBuildInteractionMatrixEmpty(t *testing.T) {
	_, err := BuildInteractionMatrix(nil)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

// cell reads a user/product weight, 0 when either id is unknown.
func cell(m *InteractionMatrix, userID, productID string) float64 {
	row, ok := m.UserIndex[userID]
	if !ok {
		return 0
	}
	col, ok := m.ProductIndex[productID]
	if !ok {
		return 0
	}
	return m.Values[row][col]
}
