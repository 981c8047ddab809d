package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/itemsvc/internal/config"
	"github.com/deppfellow/itemsvc/internal/database"
	"github.com/deppfellow/itemsvc/internal/model"
	"github.com/deppfellow/itemsvc/internal/server"
)

// ItemStore is the persistence contract for items.
//
// UpdateItem reports a missing id with ok == false and a nil error; a
// non-nil error always means the store itself failed. DeleteItem returns
// the number of removed rows (0 when the id does not exist).
type ItemStore interface {
	Init(ctx context.Context) error
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, title, description string) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, title, description string) (item *model.Item, ok bool, err error)
	DeleteItem(ctx context.Context, id int64) (int64, error)
}

// Repositories is the container for all repository instances.
type Repositories struct {
	Items ItemStore
}

// NewRepositories builds the item store matching the server's database
// driver.
func NewRepositories(s *server.Server) (*Repositories, error) {
	items, err := NewItemStore(s.DB)
	if err != nil {
		return nil, err
	}
	return &Repositories{Items: items}, nil
}

// NewItemStore picks the implementation for db.Driver.
func NewItemStore(db *database.Database) (ItemStore, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return NewPostgresItemRepository(db), nil
	case config.DriverSQLite:
		return NewSQLiteItemRepository(db), nil
	default:
		return nil, fmt.Errorf("no item store for driver %q", db.Driver)
	}
}
