package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/itemsvc/internal/database"
	"github.com/deppfellow/itemsvc/internal/model"
	"github.com/jackc/pgx/v5"
)

// PostgresItemRepository stores items in PostgreSQL through the pgx pool.
type PostgresItemRepository struct {
	db *database.Database
}

func NewPostgresItemRepository(db *database.Database) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

// Init pings the server and applies the tern migrations.
func (r *PostgresItemRepository) Init(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", database.ErrStorageUnavailable, err)
	}
	return r.db.Migrate(ctx)
}

func (r *PostgresItemRepository) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, description
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Item])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}

	return items, nil
}

func (r *PostgresItemRepository) CreateItem(ctx context.Context, title, description string) (*model.Item, error) {
	rows, err := r.db.Pool.Query(ctx, `
		INSERT INTO items (title, description)
		VALUES (@title, @description)
		RETURNING id, title, description`,
		pgx.NamedArgs{
			"title":       title,
			"description": description,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create item query: %w", err)
	}

	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Item])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:items: %w", err)
	}

	return &item, nil
}

func (r *PostgresItemRepository) UpdateItem(ctx context.Context, id int64, title, description string) (*model.Item, bool, error) {
	rows, err := r.db.Pool.Query(ctx, `
		UPDATE items
		SET title = @title,
		    description = @description,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, title, description`,
		pgx.NamedArgs{
			"id":          id,
			"title":       title,
			"description": description,
		})
	if err != nil {
		return nil, false, fmt.Errorf("failed to execute update item query for id=%d: %w", id, err)
	}

	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Item])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to collect row from table:items for id=%d: %w", id, err)
	}

	return &item, true, nil
}

func (r *PostgresItemRepository) DeleteItem(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete item id=%d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}
