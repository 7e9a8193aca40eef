package service

import (
	"context"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/engine"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// MetricsService fronts the replenishment engine with item resolution and a
// best-effort metrics cache.
type MetricsService struct {
	engine *engine.Engine
	items  repository.ItemRepository
	cache  cache.MetricsCache
}

func NewMetricsService(eng *engine.Engine, items repository.ItemRepository, cacheImpl cache.MetricsCache) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &MetricsService{engine: eng, items: items, cache: cacheImpl}
}

// GetItemMetrics computes (or serves cached) metrics for one item. Cache
// failures are logged and bypassed; only an unknown item is an error.
func (s *MetricsService) GetItemMetrics(ctx context.Context, itemID string, opts engine.Options) (*domain.ItemMetrics, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	coverage := opts.CoverageCycles
	if coverage <= 0 {
		coverage = engine.DefaultCoverageCycles
	}

	if metrics, ok, err := s.cache.Get(ctx, itemID, coverage); err == nil && ok {
		return metrics, nil
	} else if err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("metrics: cache get failed")
	}

	metrics := s.engine.ComputeMetrics(ctx, *item, opts)

	if err := s.cache.Set(ctx, metrics, coverage); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("metrics: cache set failed")
	}

	return &metrics, nil
}

// GetAllMetrics computes metrics for every known item concurrently. Items
// whose history store misbehaves come back dormant, never missing.
func (s *MetricsService) GetAllMetrics(ctx context.Context, opts engine.Options) ([]domain.ItemMetrics, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	return s.engine.ComputeBatch(ctx, items, opts), nil
}
