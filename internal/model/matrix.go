package model

import (
	"fmt"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

// InteractionMatrix is a dense user x product matrix of accumulated
// interaction weights. Row i belongs to UserIDs[i], column j to ProductIDs[j].
type InteractionMatrix struct {
	Values       [][]float64
	UserIDs      []string
	ProductIDs   []string
	UserIndex    map[string]int
	ProductIndex map[string]int
}

// BuildInteractionMatrix fixes row and column order by first appearance
// of each id and sums per-interaction weights into the cells.
func BuildInteractionMatrix(interactions []domain.Interaction) (*InteractionMatrix, error) {
	if len(interactions) == 0 {
		return nil, fmt.Errorf("build interaction matrix: %w", domain.ErrInsufficientData)
	}

	m := &InteractionMatrix{
		UserIndex:    make(map[string]int),
		ProductIndex: make(map[string]int),
	}
	for _, it := range interactions {
		if _, ok := m.UserIndex[it.UserID]; !ok {
			m.UserIndex[it.UserID] = len(m.UserIDs)
			m.UserIDs = append(m.UserIDs, it.UserID)
		}
		if _, ok := m.ProductIndex[it.ProductID]; !ok {
			m.ProductIndex[it.ProductID] = len(m.ProductIDs)
			m.ProductIDs = append(m.ProductIDs, it.ProductID)
		}
	}

	m.Values = make([][]float64, len(m.UserIDs))
	for i := range m.Values {
		m.Values[i] = make([]float64, len(m.ProductIDs))
	}

	for _, it := range interactions {
		row, ok := m.UserIndex[it.UserID]
		if !ok {
			continue
		}
		col, ok := m.ProductIndex[it.ProductID]
		if !ok {
			continue
		}
		m.Values[row][col] += it.Weight()
	}

	return m, nil
}

func (m *InteractionMatrix) Dims() (users, products int) {
	return len(m.UserIDs), len(m.ProductIDs)
}
