package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const metricsKeyPrefix = "replenish:metrics"

// MetricsCache holds recently computed item metrics. Misses and failures are
// equivalent to the caller: recompute and move on.
type MetricsCache interface {
	Get(ctx context.Context, itemID string, coverage float64) (*domain.ItemMetrics, bool, error)
	Set(ctx context.Context, metrics domain.ItemMetrics, coverage float64) error
	InvalidateItem(ctx context.Context, itemID string) error
}

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMetricsCache struct{}

func NewMetricsCache(cfg config.CacheConfig) (MetricsCache, error) {
	if !cfg.Enabled {
		return &noopMetricsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMetricsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopMetricsCache() MetricsCache {
	return &noopMetricsCache{}
}

// cachedMetrics wraps ItemMetrics so the infinite DaysRemaining of dormant
// items survives a JSON round trip.
type cachedMetrics struct {
	domain.ItemMetrics
	DaysRemaining *float64 `json:"days_remaining"`
}

func (c *redisMetricsCache) Get(ctx context.Context, itemID string, coverage float64) (*domain.ItemMetrics, bool, error) {
	key := buildMetricsKey(itemID, coverage)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedMetrics
	if err := json.Unmarshal(payload, &cached); err != nil {
		return nil, false, fmt.Errorf("decode metrics cache: %w", err)
	}

	metrics := cached.ItemMetrics
	if cached.DaysRemaining != nil {
		metrics.DaysRemaining = *cached.DaysRemaining
	} else {
		metrics.DaysRemaining = math.Inf(1)
	}

	return &metrics, true, nil
}

func (c *redisMetricsCache) Set(ctx context.Context, metrics domain.ItemMetrics, coverage float64) error {
	cached := cachedMetrics{ItemMetrics: metrics}
	if !math.IsInf(metrics.DaysRemaining, 1) {
		days := metrics.DaysRemaining
		cached.DaysRemaining = &days
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode metrics cache: %w", err)
	}

	key := buildMetricsKey(metrics.ItemID, coverage)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateItem drops every cached coverage variant for the item; overrides
// change how its history classifies on the next computation.
func (c *redisMetricsCache) InvalidateItem(ctx context.Context, itemID string) error {
	return deleteKeysWithPrefix(ctx, c.client, fmt.Sprintf("%s:%s:", metricsKeyPrefix, itemID))
}

func (n *noopMetricsCache) Get(ctx context.Context, itemID string, coverage float64) (*domain.ItemMetrics, bool, error) {
	return nil, false, nil
}

func (n *noopMetricsCache) Set(ctx context.Context, metrics domain.ItemMetrics, coverage float64) error {
	return nil
}

func (n *noopMetricsCache) InvalidateItem(ctx context.Context, itemID string) error {
	return nil
}

func buildMetricsKey(itemID string, coverage float64) string {
	return fmt.Sprintf("%s:%s:%.2f", metricsKeyPrefix, itemID, coverage)
}
