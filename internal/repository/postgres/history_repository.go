// backend-go/internal/repository/postgres/history_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/engine"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

type historyRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

// clampReceiptLimit keeps a non-positive limit from turning into an
// unbounded query, falling back to the engine's own fetch bound.
func clampReceiptLimit(limit int) int {
	if limit <= 0 {
		return engine.MaxReceivingEvents
	}
	return limit
}

func (r *historyRepository) RecentReceipts(ctx context.Context, itemID string, limit int) ([]domain.ReceivingEvent, error) {
	limit = clampReceiptLimit(limit)

	query := `
        SELECT id, item_id, quantity, received_at
        FROM receiving_events
        WHERE item_id = $1 AND status = 'received'
        ORDER BY received_at DESC
        LIMIT $2
    `

	var events []domain.ReceivingEvent
	if err := r.db.SelectContext(ctx, &events, query, itemID, limit); err != nil {
		return nil, fmt.Errorf("error getting receiving events: %w", err)
	}

	return events, nil
}

func (r *historyRepository) AuditEntries(ctx context.Context, itemID string, since time.Time) ([]domain.AuditLogEntry, error) {
	query := `
        SELECT id, item_id, action, occurred_at, details
        FROM audit_log
        WHERE item_id = $1
          AND action IN ('CONSUMED', 'RESTOCKED', 'UPDATED')
          AND occurred_at >= $2
        ORDER BY occurred_at ASC
    `

	var entries []domain.AuditLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, itemID, since); err != nil {
		return nil, fmt.Errorf("error getting audit entries: %w", err)
	}

	return entries, nil
}

func (r *historyRepository) Overrides(ctx context.Context, itemID string) ([]domain.OverrideRecord, error) {
	query := `
        SELECT id, item_id, user_id, recommended_qty, ordered_qty, justification, created_at
        FROM order_overrides
        WHERE item_id = $1
        ORDER BY created_at DESC
    `

	var records []domain.OverrideRecord
	if err := r.db.SelectContext(ctx, &records, query, itemID); err != nil {
		return nil, fmt.Errorf("error getting override records: %w", err)
	}

	return records, nil
}
