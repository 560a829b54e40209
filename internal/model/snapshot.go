package model

import "time"

const (
	KindCollaborative = "collaborative"
	KindContent       = "content"
)

// CollaborativeBundle is everything one training run persists for the
// collaborative model.
type CollaborativeBundle struct {
	Matrix         *InteractionMatrix
	UserSimilarity [][]float64
	TrainedAt      time.Time
}

// ContentBundle is the persisted content model.
type ContentBundle struct {
	Features          *ProductFeatures
	ProductSimilarity [][]float64
	TrainedAt         time.Time
}

// Snapshot is the immutable set of models served at one time. It is
// replaced as a whole after each successful training run; either bundle
// may be nil when that model has never been trained.
type Snapshot struct {
	Collaborative *CollaborativeBundle
	Content       *ContentBundle
	LoadedAt      time.Time
}

func (s *Snapshot) HasCollaborative() bool {
	return s != nil && s.Collaborative != nil && s.Collaborative.Matrix != nil
}

func (s *Snapshot) HasContent() bool {
	return s != nil && s.Content != nil && s.Content.Features != nil
}
