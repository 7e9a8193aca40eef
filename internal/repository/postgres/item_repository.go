// backend-go/internal/repository/postgres/item_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
)

// ErrItemNotFound is returned when an item id resolves to nothing.
var ErrItemNotFound = errors.New("item not found")

type itemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	query := `
        SELECT id, name, current_stock, lead_time_days, created_at, updated_at
        FROM items
        WHERE id = $1
    `

	var item domain.Item
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("error getting item: %w", err)
	}

	return &item, nil
}

func (r *itemRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	query := `
        SELECT id, name, current_stock, lead_time_days, created_at, updated_at
        FROM items
        ORDER BY name ASC
    `

	var items []domain.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}

	return items, nil
}
