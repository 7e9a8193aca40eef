// backend-go/internal/repository/postgres/override_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

type overrideRepository struct {
	db *DB
}

func NewOverrideRepository(db *DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

// Insert writes the record inside a semaphore-limited transaction so a wave
// of metric reads cannot starve the one write path this engine has.
func (r *overrideRepository) Insert(ctx context.Context, record *domain.OverrideRecord) error {
	query := `
        INSERT INTO order_overrides
            (id, item_id, user_id, recommended_qty, ordered_qty, justification, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			record.ID,
			record.ItemID,
			record.UserID,
			record.RecommendedQty,
			record.OrderedQty,
			record.Justification,
			record.CreatedAt,
		); err != nil {
			return fmt.Errorf("error inserting override record: %w", err)
		}
		return nil
	})
}

func (r *overrideRepository) ListByItem(ctx context.Context, itemID string, limit int) ([]domain.OverrideRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT id, item_id, user_id, recommended_qty, ordered_qty, justification, created_at
        FROM order_overrides
        WHERE item_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	var records []domain.OverrideRecord
	if err := r.db.SelectContext(ctx, &records, query, itemID, limit); err != nil {
		return nil, fmt.Errorf("error listing override records: %w", err)
	}

	return records, nil
}
