package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deppfellow/itemsvc/internal/database"
	"github.com/deppfellow/itemsvc/internal/model"
)

// SQLiteItemRepository stores items in a local SQLite file.
type SQLiteItemRepository struct {
	db *database.Database
}

func NewSQLiteItemRepository(db *database.Database) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

// Init pings the database and ensures the items table exists.
func (r *SQLiteItemRepository) Init(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", database.ErrStorageUnavailable, err)
	}
	return r.db.Migrate(ctx)
}

func (r *SQLiteItemRepository) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT id, title, description
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan row from table:items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows from table:items: %w", err)
	}

	return items, nil
}

func (r *SQLiteItemRepository) CreateItem(ctx context.Context, title, description string) (*model.Item, error) {
	var item model.Item
	err := r.db.SQL.QueryRowContext(ctx, `
		INSERT INTO items (title, description)
		VALUES (?, ?)
		RETURNING id, title, description`,
		title, description,
	).Scan(&item.ID, &item.Title, &item.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to execute create item query: %w", err)
	}

	return &item, nil
}

func (r *SQLiteItemRepository) UpdateItem(ctx context.Context, id int64, title, description string) (*model.Item, bool, error) {
	var item model.Item
	err := r.db.SQL.QueryRowContext(ctx, `
		UPDATE items
		SET title = ?,
		    description = ?,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
		RETURNING id, title, description`,
		title, description, id,
	).Scan(&item.ID, &item.Title, &item.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to execute update item query for id=%d: %w", id, err)
	}

	return &item, true, nil
}

func (r *SQLiteItemRepository) DeleteItem(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.SQL.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete item id=%d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for id=%d: %w", id, err)
	}
	return n, nil
}
