package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/product-recommender/internal/cache"
	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/logging"
	"github.com/actuallystonmai/product-recommender/internal/metrics"
	"github.com/actuallystonmai/product-recommender/internal/model"
	"github.com/actuallystonmai/product-recommender/internal/store"
)

const (
	DefaultUserLimit             = 10
	DefaultSimilarLimit          = 6
	DefaultFrequentlyBoughtLimit = 4
	MaxLimit                     = 50

	historyLimit = 100
)

type Service struct {
	src      DataSource
	store    ModelStore
	cache    *cache.Cache
	collab   *CollaborativeGenerator
	content  *ContentGenerator
	fallback *FallbackPolicy
	log      zerolog.Logger

	models  atomic.Pointer[model.Snapshot]
	trainMu sync.Mutex
}

// NewService wires the serving facade. store and cache may be nil: without
// a store models live only in memory, without a cache nothing is cached.
func NewService(src DataSource, store ModelStore, cache *cache.Cache) *Service {
	s := &Service{
		src:      src,
		store:    store,
		cache:    cache,
		collab:   NewCollaborativeGenerator(src),
		content:  NewContentGenerator(src),
		fallback: NewFallbackPolicy(src),
		log:      logging.With().Str("component", "service").Logger(),
	}
	s.setSnapshot(&model.Snapshot{LoadedAt: time.Now().UTC()})
	return s
}

// Snapshot returns the models currently being served.
func (s *Service) Snapshot() *model.Snapshot {
	return s.models.Load()
}

func (s *Service) setSnapshot(snap *model.Snapshot) {
	s.models.Store(snap)
	metrics.SetModelLoaded(model.KindCollaborative, snap.HasCollaborative())
	metrics.SetModelLoaded(model.KindContent, snap.HasContent())
}

// ModelsLoaded reports which model kinds are in the serving snapshot.
func (s *Service) ModelsLoaded() (collaborative, content bool) {
	snap := s.Snapshot()
	return snap.HasCollaborative(), snap.HasContent()
}

// LoadModels reads every bundle from the store and swaps them in as one
// snapshot. Missing bundles are not an error; that model is simply absent.
func (s *Service) LoadModels() error {
	if s.store == nil {
		return nil
	}

	snap := &model.Snapshot{LoadedAt: time.Now().UTC()}
	generations := make(map[string]string, len(modelKinds))
	for _, kind := range modelKinds {
		var (
			meta store.Metadata
			err  error
		)
		switch kind {
		case model.KindCollaborative:
			var b model.CollaborativeBundle
			if meta, err = s.store.Load(kind, &b); err == nil {
				snap.Collaborative = &b
			}
		case model.KindContent:
			var b model.ContentBundle
			if meta, err = s.store.Load(kind, &b); err == nil {
				snap.Content = &b
			}
		}
		if errors.Is(err, domain.ErrModelAbsent) {
			s.log.Warn().Str("kind", kind).Msg("no trained model found, serving in fallback mode")
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s model: %w", kind, err)
		}
		generations[kind] = meta.Generation
		s.log.Info().Str("kind", kind).Str("generation", meta.Generation).Msg("loaded model")
	}

	collabGen, hasCollab := generations[model.KindCollaborative]
	contentGen, hasContent := generations[model.KindContent]
	if hasCollab && hasContent && collabGen != contentGen {
		return fmt.Errorf("stored models come from different training runs (%s, %s)", collabGen, contentGen)
	}

	s.setSnapshot(snap)
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed id %q", domain.ErrInvalidInput, id)
	}
	return nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// GetUserRecommendations returns a ranked list for userID. Users without
// any history get the popular list; everyone else gets the hybrid blend
// with purchased products removed.
func (s *Service) GetUserRecommendations(ctx context.Context, userID string, limit int) (*domain.RecommendationResult, error) {
	if err := validateID(userID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultUserLimit)

	return s.cached(ctx, cache.SubjectUser, userID, limit, s.userResultFresh(ctx, userID), func() (*domain.RecommendationResult, error) {
		return s.recommendForUser(ctx, userID, limit)
	})
}

// userResultFresh reports whether a cached user list still holds: a
// popular list is only valid while the user has no history, and no list
// may contain something the user has bought since it was cached.
func (s *Service) userResultFresh(ctx context.Context, userID string) func(*domain.RecommendationResult) (bool, error) {
	return func(res *domain.RecommendationResult) (bool, error) {
		if res.Method == domain.MethodPopular {
			history, err := s.src.InteractionsByUser(ctx, userID, 1)
			if err != nil {
				return false, fmt.Errorf("fetch interactions: %w", err)
			}
			if len(history) > 0 {
				return false, nil
			}
		}
		purchased, err := s.purchaseSet(ctx, userID)
		if err != nil {
			return false, err
		}
		for _, id := range res.ProductIDs {
			if _, ok := purchased[id]; ok {
				return false, nil
			}
		}
		return true, nil
	}
}

func (s *Service) recommendForUser(ctx context.Context, userID string, limit int) (*domain.RecommendationResult, error) {
	history, err := s.src.InteractionsByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}

	if len(history) == 0 {
		ids, err := s.fallback.Popular(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("fetch popular products: %w", err)
		}
		return &domain.RecommendationResult{ProductIDs: ids, Method: domain.MethodPopular}, nil
	}

	purchased, err := s.purchaseSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	seeds := make([]string, 0, len(purchased))
	for id := range purchased {
		seeds = append(seeds, id)
	}

	snap := s.Snapshot()

	var collabIDs, contentIDs []string
	if snap.HasCollaborative() {
		cands, err := s.collab.Generate(ctx, userID, purchased, limit)
		collabIDs = s.degrade(domain.SourceCollaborative, cands, err)
	}
	if snap.HasContent() {
		cands, err := s.content.Generate(ctx, seeds, limit)
		contentIDs = s.degrade(domain.SourceContent, cands, err)
	}

	ids := truncate(filterExcluded(model.Blend(collabIDs, contentIDs, limit), purchased), limit)
	if len(ids) == 0 {
		ids, err = s.fallback.MostPurchased(ctx, limit, purchased)
		if err != nil {
			return nil, fmt.Errorf("fetch most purchased products: %w", err)
		}
	}

	return &domain.RecommendationResult{ProductIDs: ids, Method: domain.MethodHybrid}, nil
}

// purchaseSet is the user's full purchase history, used as the exclusion set.
func (s *Service) purchaseSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	purchases, err := s.src.UserInteractionsByType(ctx, userID, domain.InteractionPurchase)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase history: %w", err)
	}
	set := make(map[string]struct{}, len(purchases))
	for _, it := range purchases {
		set[it.ProductID] = struct{}{}
	}
	return set, nil
}

// degrade turns a generator failure into an empty candidate list.
func (s *Service) degrade(generator string, cands []domain.ScoredCandidate, err error) []string {
	if err != nil {
		metrics.GeneratorFailures.WithLabelValues(generator).Inc()
		s.log.Error().Err(err).Str("generator", generator).Msg("candidate generator failed")
		return nil
	}
	return candidateIDs(cands)
}

// GetSimilarProducts returns products similar to productID, excluding it.
func (s *Service) GetSimilarProducts(ctx context.Context, productID string, limit int) (*domain.RecommendationResult, error) {
	if err := validateID(productID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultSimilarLimit)

	return s.cached(ctx, cache.SubjectProduct, productID, limit, nil, func() (*domain.RecommendationResult, error) {
		product, err := s.src.ProductByID(ctx, productID)
		if err != nil {
			return nil, err
		}

		var ids []string
		if s.Snapshot().HasContent() {
			cands, err := s.content.Generate(ctx, []string{productID}, limit+1)
			ids = s.degrade(domain.SourceContent, cands, err)
			ids = truncate(filterExcluded(ids, map[string]struct{}{productID: {}}), limit)
		} else {
			ids, err = s.fallback.SameCategory(ctx, product, limit)
			if err != nil {
				return nil, fmt.Errorf("fetch same category products: %w", err)
			}
		}
		return &domain.RecommendationResult{ProductIDs: ids, Method: domain.MethodContentBased}, nil
	})
}

// GetFrequentlyBoughtTogether approximates basket affinity with the best
// sellers of the same category.
func (s *Service) GetFrequentlyBoughtTogether(ctx context.Context, productID string, limit int) (*domain.RecommendationResult, error) {
	if err := validateID(productID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultFrequentlyBoughtLimit)

	return s.cached(ctx, cache.SubjectFrequentlyBought, productID, limit, nil, func() (*domain.RecommendationResult, error) {
		product, err := s.src.ProductByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		products, err := s.src.ProductsInCategory(ctx, product.Category, product.ID, limit, false)
		if err != nil {
			return nil, fmt.Errorf("fetch same category products: %w", err)
		}
		return &domain.RecommendationResult{ProductIDs: productIDs(products), Method: domain.MethodCategory}, nil
	})
}

// cached serves from the cache when possible and stores fresh results.
// fresh, when set, must accept a hit before it is served; rejected hits
// are recomputed and overwritten. Cache failures are logged and never fail
// the request.
func (s *Service) cached(ctx context.Context, subject, id string, limit int,
	fresh func(*domain.RecommendationResult) (bool, error),
	compute func() (*domain.RecommendationResult, error),
) (*domain.RecommendationResult, error) {
	hit, found, err := s.cache.Get(ctx, subject, id, limit)
	if err != nil {
		metrics.CacheResults.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("subject", subject).Str("id", id).Msg("cache get failed")
	}
	if found && fresh != nil {
		ok, err := fresh(hit)
		if err != nil {
			s.log.Warn().Err(err).Str("subject", subject).Str("id", id).Msg("cache revalidation failed")
		}
		if !ok {
			metrics.CacheResults.WithLabelValues("stale").Inc()
			found = false
		}
	}
	if found {
		metrics.CacheResults.WithLabelValues("hit").Inc()
		hit.CacheHit = true
		return hit, nil
	}
	if hit == nil {
		metrics.CacheResults.WithLabelValues("miss").Inc()
	}

	res, err := compute()
	if err != nil {
		return nil, err
	}
	metrics.RecommendationRequests.WithLabelValues(subject, string(res.Method)).Inc()

	if err := s.cache.Set(ctx, subject, id, limit, res); err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Str("id", id).Msg("cache set failed")
	}
	return res, nil
}
