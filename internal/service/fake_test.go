package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/store"
)

// fakeSource is an in-memory DataSource with the same ordering rules as
// the Postgres repository.
type fakeSource struct {
	interactions []domain.Interaction
	products     []domain.Product

	// failing method names return errFake
	failing map[string]bool
}

var errFake = fmt.Errorf("fake store down: %w", domain.ErrDataAccess)

func (f *fakeSource) fail(method string) error {
	if f.failing[method] {
		return errFake
	}
	return nil
}

// id builds a stable uuid-shaped id from a small number.
func id(n int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
}

func (f *fakeSource) InteractionsByUser(_ context.Context, userID string, limit int) ([]domain.Interaction, error) {
	if err := f.fail("InteractionsByUser"); err != nil {
		return nil, err
	}
	var out []domain.Interaction
	for _, it := range f.interactions {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) InteractionsByType(_ context.Context, typ domain.InteractionType) ([]domain.Interaction, error) {
	if err := f.fail("InteractionsByType"); err != nil {
		return nil, err
	}
	var out []domain.Interaction
	for _, it := range f.interactions {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSource) UserInteractionsByType(_ context.Context, userID string, typ domain.InteractionType) ([]domain.Interaction, error) {
	if err := f.fail("UserInteractionsByType"); err != nil {
		return nil, err
	}
	var out []domain.Interaction
	for _, it := range f.interactions {
		if it.UserID == userID && it.Type == typ {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSource) AllInteractions(context.Context) ([]domain.Interaction, error) {
	if err := f.fail("AllInteractions"); err != nil {
		return nil, err
	}
	return f.interactions, nil
}

func (f *fakeSource) ProductByID(_ context.Context, productID string) (*domain.Product, error) {
	if err := f.fail("ProductByID"); err != nil {
		return nil, err
	}
	for _, p := range f.products {
		if p.ID == productID {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeSource) ProductsByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	if err := f.fail("ProductsByIDs"); err != nil {
		return nil, err
	}
	want := toSet(ids)
	var out []domain.Product
	for _, p := range f.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) ProductsMatching(_ context.Context, categories, tags, exclude []string, limit int) ([]domain.Product, error) {
	if err := f.fail("ProductsMatching"); err != nil {
		return nil, err
	}
	cats, tagSet, ex := toSet(categories), toSet(tags), toSet(exclude)
	var out []domain.Product
	for _, p := range f.products {
		if _, skip := ex[p.ID]; skip {
			continue
		}
		_, match := cats[p.Category]
		for _, t := range p.Tags {
			if _, ok := tagSet[t]; ok {
				match = true
			}
		}
		if match {
			out = append(out, p)
		}
	}
	return rankProducts(out, true, limit), nil
}

func (f *fakeSource) PopularProducts(_ context.Context, limit int, byRating bool) ([]domain.Product, error) {
	if err := f.fail("PopularProducts"); err != nil {
		return nil, err
	}
	return rankProducts(append([]domain.Product(nil), f.products...), byRating, limit), nil
}

func (f *fakeSource) ProductsInCategory(_ context.Context, category, excludeID string, limit int, byRating bool) ([]domain.Product, error) {
	if err := f.fail("ProductsInCategory"); err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range f.products {
		if p.Category == category && p.ID != excludeID {
			out = append(out, p)
		}
	}
	return rankProducts(out, byRating, limit), nil
}

func (f *fakeSource) AllProducts(context.Context) ([]domain.Product, error) {
	if err := f.fail("AllProducts"); err != nil {
		return nil, err
	}
	return f.products, nil
}

func rankProducts(ps []domain.Product, byRating bool, limit int) []domain.Product {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].PurchaseCount != ps[j].PurchaseCount {
			return ps[i].PurchaseCount > ps[j].PurchaseCount
		}
		if byRating && ps[i].AverageRating != ps[j].AverageRating {
			return ps[i].AverageRating > ps[j].AverageRating
		}
		return ps[i].ID < ps[j].ID
	})
	if len(ps) > limit {
		ps = ps[:limit]
	}
	return ps
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		set[v] = struct{}{}
	}
	return set
}

// brokenStore fails every SaveAll.
type brokenStore struct{}

func (brokenStore) SaveAll(map[string]any) error { return errors.New("disk full") }

func (brokenStore) Load(kind string, _ any) (store.Metadata, error) {
	return store.Metadata{}, fmt.Errorf("load %s: %w", kind, domain.ErrModelAbsent)
}
