package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/metrics"
	"github.com/actuallystonmai/product-recommender/internal/model"
)

// Train runs the offline pipeline: load all interactions and products,
// build both models, persist them, and swap them in as the new serving
// snapshot. On any error the current snapshot is left untouched.
func (s *Service) Train(ctx context.Context) (*domain.TrainingMetrics, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()
	res, err := s.train(ctx)
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Msg("training failed")
		return nil, err
	}

	res.DurationMs = time.Since(start).Milliseconds()
	metrics.TrainingRuns.WithLabelValues("success").Inc()
	metrics.LastTrainingSuccess.SetToCurrentTime()
	s.log.Info().
		Int("users", res.Collaborative.NumUsers).
		Int("products", res.ContentBased.NumProducts).
		Int("interactions", res.Collaborative.NumInteractions).
		Int("features", res.ContentBased.NumFeatures).
		Int64("duration_ms", res.DurationMs).
		Msg("models trained")
	return res, nil
}

func (s *Service) train(ctx context.Context) (*domain.TrainingMetrics, error) {
	var (
		interactions []domain.Interaction
		products     []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interactions, err = s.src.AllInteractions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.src.AllProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}

	s.log.Info().Int("interactions", len(interactions)).Int("products", len(products)).Msg("loaded training data")
	if len(interactions) == 0 || len(products) == 0 {
		return nil, fmt.Errorf("%d interactions, %d products: %w", len(interactions), len(products), domain.ErrInsufficientData)
	}

	trainedAt := time.Now().UTC()

	collab, err := trainCollaborative(interactions, trainedAt)
	if err != nil {
		return nil, err
	}
	content, err := trainContent(products, trainedAt)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{Collaborative: collab, Content: content, LoadedAt: trainedAt}
	if err := s.persist(snap); err != nil {
		return nil, err
	}
	s.setSnapshot(snap)

	if err := s.cache.Flush(ctx); err != nil {
		s.log.Warn().Err(err).Msg("cache flush after training failed")
	}

	users, prods := collab.Matrix.Dims()
	return &domain.TrainingMetrics{
		Collaborative: domain.CollaborativeMetrics{
			NumUsers:        users,
			NumProducts:     prods,
			NumInteractions: len(interactions),
		},
		ContentBased: domain.ContentMetrics{
			NumProducts: len(content.Features.ProductIDs),
			NumFeatures: len(content.Features.Vectorizer.Terms),
		},
	}, nil
}

// persist writes both bundles as one generation. Without a store the
// models only live in the in-memory snapshot.
func (s *Service) persist(snap *model.Snapshot) error {
	if s.store == nil {
		return nil
	}
	err := s.store.SaveAll(map[string]any{
		model.KindCollaborative: snap.Collaborative,
		model.KindContent:       snap.Content,
	})
	if err != nil {
		return &model.TrainingError{Stage: "persist", Err: err}
	}
	return nil
}

func trainCollaborative(interactions []domain.Interaction, trainedAt time.Time) (b *model.CollaborativeBundle, err error) {
	defer recoverStage("collaborative", &err)

	m, err := model.BuildInteractionMatrix(interactions)
	if err != nil {
		return nil, wrapStage("collaborative", err)
	}
	return &model.CollaborativeBundle{
		Matrix:         m,
		UserSimilarity: model.CosineSimilarity(m.Values),
		TrainedAt:      trainedAt,
	}, nil
}

func trainContent(products []domain.Product, trainedAt time.Time) (b *model.ContentBundle, err error) {
	defer recoverStage("content", &err)

	features, err := model.FitTFIDF(products, model.MaxFeatures)
	if err != nil {
		return nil, wrapStage("content", err)
	}
	return &model.ContentBundle{
		Features:          features,
		ProductSimilarity: model.CosineSimilarity(features.Rows),
		TrainedAt:         trainedAt,
	}, nil
}

// wrapStage keeps ErrInsufficientData as is and marks anything else as a
// training failure.
func wrapStage(stage string, err error) error {
	if errors.Is(err, domain.ErrInsufficientData) {
		return err
	}
	return &model.TrainingError{Stage: stage, Err: err}
}

func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		*err = &model.TrainingError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}
