package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

const (
	defaultTTL = time.Hour
	keyPrefix  = "rec:"
)

// Subject kinds used in cache keys.
const (
	SubjectUser             = "user"
	SubjectProduct          = "product"
	SubjectFrequentlyBought = "fbt"
)

// Cache stores served recommendation lists. A nil *Cache is valid and
// behaves as an always-empty cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func buildKey(subject, id string, limit int) string {
	return fmt.Sprintf("%s%s:%s:limit:%d", keyPrefix, subject, id, limit)
}

// Get a cached result. found is false on a miss.
func (c *Cache) Get(ctx context.Context, subject, id string, limit int) (*domain.RecommendationResult, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	key := buildKey(subject, id, limit)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	var res domain.RecommendationResult
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}
	return &res, true, nil
}

func (c *Cache) Set(ctx context.Context, subject, id string, limit int, res *domain.RecommendationResult) error {
	if c == nil {
		return nil
	}

	key := buildKey(subject, id, limit)
	val, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}
	return nil
}

// Flush drops every cached list. Called after models are replaced.
func (c *Cache) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
