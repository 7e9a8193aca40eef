package service

import (
	"context"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OverrideService records governance overrides: a human's deliberate
// deviation from a recommended quantity.
type OverrideService struct {
	repo  repository.OverrideRepository
	cache cache.MetricsCache
}

func NewOverrideService(repo repository.OverrideRepository, metricsCache cache.MetricsCache) *OverrideService {
	if metricsCache == nil {
		metricsCache = cache.NewNoopMetricsCache()
	}
	return &OverrideService{repo: repo, cache: metricsCache}
}

// LogOverride appends an override record. It is fire-and-forget: a failed
// audit write is logged, never surfaced, because losing the record must not
// block the purchase it documents. A logged override changes how the item's
// history will be classified, so its cached metrics are invalidated.
func (s *OverrideService) LogOverride(ctx context.Context, record domain.OverrideRecord) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.repo.Insert(ctx, &record); err != nil {
		log.Error().Err(err).
			Str("item_id", record.ItemID).
			Int("recommended_qty", record.RecommendedQty).
			Int("ordered_qty", record.OrderedQty).
			Msg("override: failed to persist record")
		return
	}

	if err := s.cache.InvalidateItem(ctx, record.ItemID); err != nil {
		log.Warn().Err(err).Str("item_id", record.ItemID).Msg("override: failed to invalidate metrics cache")
	}
}

// History lists the most recent overrides for an item.
func (s *OverrideService) History(ctx context.Context, itemID string, limit int) ([]domain.OverrideRecord, error) {
	return s.repo.ListByItem(ctx, itemID, limit)
}
