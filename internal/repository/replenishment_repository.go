// backend-go/internal/repository/replenishment_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// HistoryRepository is the engine's read-only view of an item's event
// history: completed receipts, audit telemetry and past overrides.
type HistoryRepository interface {
	RecentReceipts(ctx context.Context, itemID string, limit int) ([]domain.ReceivingEvent, error)
	AuditEntries(ctx context.Context, itemID string, since time.Time) ([]domain.AuditLogEntry, error)
	Overrides(ctx context.Context, itemID string) ([]domain.OverrideRecord, error)
}

// OverrideRepository appends and lists governance override records.
type OverrideRepository interface {
	Insert(ctx context.Context, record *domain.OverrideRecord) error
	ListByItem(ctx context.Context, itemID string, limit int) ([]domain.OverrideRecord, error)
}

// ItemRepository resolves the items the pipeline runs over.
type ItemRepository interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
}
