package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/logging"
)

const (
	numProducts = 100
	numUsers    = 20
)

type template struct {
	name     string
	category string
	tags     []string
}

var templates = []template{
	{"Gaming Laptop", "electronics", []string{"gaming", "laptop", "tech"}},
	{"Wireless Headphones", "electronics", []string{"audio", "wireless", "music"}},
	{"Smart Watch", "electronics", []string{"wearable", "fitness", "tech"}},
	{"Running Shoes", "sports", []string{"footwear", "running", "fitness"}},
	{"Yoga Mat", "sports", []string{"yoga", "fitness", "exercise"}},
	{"Coffee Maker", "home", []string{"kitchen", "appliance", "coffee"}},
	{"Office Chair", "home", []string{"furniture", "office", "ergonomic"}},
	{"Backpack", "other", []string{"bag", "travel", "storage"}},
	{"Smartphone", "electronics", []string{"phone", "mobile", "tech"}},
	{"Bluetooth Speaker", "electronics", []string{"audio", "wireless", "music"}},
	{"Fitness Tracker", "sports", []string{"wearable", "fitness", "health"}},
	{"Desk Lamp", "home", []string{"lighting", "office", "home"}},
	{"Water Bottle", "sports", []string{"hydration", "fitness", "sports"}},
	{"Notebook Set", "other", []string{"stationery", "writing", "office"}},
	{"Keyboard", "electronics", []string{"computer", "gaming", "tech"}},
}

// Setup replaces the catalog and interaction log with deterministic
// sample data.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	products, err := buildProducts(rng, numProducts)
	if err != nil {
		return fmt.Errorf("build products: %w", err)
	}
	interactions, err := buildInteractions(rng, products, numUsers)
	if err != nil {
		return fmt.Errorf("build interactions: %w", err)
	}

	logging.Info().Msg("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `TRUNCATE interactions, products RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	logging.Info().Int("count", len(products)).Msg("[seed] inserting products")
	if err := insertProducts(ctx, pool, products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	logging.Info().Int("count", len(interactions)).Msg("[seed] inserting interactions")
	if err := insertInteractions(ctx, pool, interactions); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	logging.Info().Msg("[seed] seeding complete")
	return nil
}

func newID(rng *rand.Rand) (string, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func buildProducts(rng *rand.Rand, n int) ([]domain.Product, error) {
	products := make([]domain.Product, 0, n)
	for i := range n {
		t := templates[i%len(templates)]
		id, err := newID(rng)
		if err != nil {
			return nil, err
		}
		products = append(products, domain.Product{
			ID:            id,
			Name:          fmt.Sprintf("%s %d", t.name, i+1),
			Description:   fmt.Sprintf("High-quality %s with excellent features and performance.", strings.ToLower(t.name)),
			Category:      t.category,
			Tags:          t.tags,
			AverageRating: math.Round((3+rng.Float64()*2)*10) / 10,
		})
	}
	return products, nil
}

// buildInteractions gives every user 5 to 24 interactions, mostly views.
// Purchases are tallied into the products' purchase counts.
func buildInteractions(rng *rand.Rand, products []domain.Product, users int) ([]domain.Interaction, error) {
	types := []domain.InteractionType{
		domain.InteractionView, domain.InteractionView, domain.InteractionView,
		domain.InteractionCart, domain.InteractionPurchase, domain.InteractionRating,
	}
	now := time.Now().UTC()

	var out []domain.Interaction
	for range users {
		userID, err := newID(rng)
		if err != nil {
			return nil, err
		}
		n := rng.Intn(20) + 5
		for range n {
			idx := rng.Intn(len(products))
			it := domain.Interaction{
				UserID:    userID,
				ProductID: products[idx].ID,
				Type:      types[rng.Intn(len(types))],
				Timestamp: now.Add(-time.Duration(rng.Intn(180*24)) * time.Hour),
			}
			switch it.Type {
			case domain.InteractionRating:
				v := float64(rng.Intn(5) + 1)
				it.RatingValue = &v
			case domain.InteractionPurchase:
				products[idx].PurchaseCount++
			}
			out = append(out, it)
		}
	}
	return out, nil
}

func insertProducts(ctx context.Context, pool *pgxpool.Pool, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	rows := []string{}
	args := []any{}
	for _, p := range products {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, p.ID, p.Name, p.Description, p.Category, p.Tags, p.PurchaseCount, p.AverageRating)
	}

	query := "INSERT INTO products (id, name, description, category, tags, purchase_count, average_rating) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func insertInteractions(ctx context.Context, pool *pgxpool.Pool, interactions []domain.Interaction) error {
	if len(interactions) == 0 {
		return nil
	}

	rows := []string{}
	args := []any{}
	for _, it := range interactions {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, it.UserID, it.ProductID, string(it.Type), it.RatingValue, it.Timestamp)
	}

	query := "INSERT INTO interactions (user_id, product_id, type, rating_value, created_at) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}
