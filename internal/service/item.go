package service

import (
	"context"
	"time"

	"github.com/deppfellow/itemsvc/internal/lib/job"
	"github.com/deppfellow/itemsvc/internal/model"
	"github.com/deppfellow/itemsvc/internal/repository"
	"github.com/rs/zerolog"
)

// DefaultNotifyTimeout bounds how long a mutation waits on publishing its
// change event.
const DefaultNotifyTimeout = 2 * time.Second

// Notifier publishes item change events.
type Notifier interface {
	NotifyItemChanged(ctx context.Context, action string, itemID int64, title string) error
}

// ItemService runs item operations against the store. Each method issues
// exactly one store call.
type ItemService struct {
	store    repository.ItemStore
	notifier Notifier
	logger   *zerolog.Logger

	notifyTimeout time.Duration
}

// NewItemService returns an ItemService. notifier may be nil.
func NewItemService(store repository.ItemStore, notifier Notifier, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:         store,
		notifier:      notifier,
		logger:        logger,
		notifyTimeout: DefaultNotifyTimeout,
	}
}

func (s *ItemService) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.store.ListItems(ctx)
}

func (s *ItemService) CreateItem(ctx context.Context, title, description string) (*model.Item, error) {
	item, err := s.store.CreateItem(ctx, title, description)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, job.ActionCreated, item.ID, item.Title)
	return item, nil
}

// UpdateItem returns ok == false when no item has id.
func (s *ItemService) UpdateItem(ctx context.Context, id int64, title, description string) (*model.Item, bool, error) {
	item, ok, err := s.store.UpdateItem(ctx, id, title, description)
	if err != nil || !ok {
		return nil, ok, err
	}

	s.notify(ctx, job.ActionUpdated, item.ID, item.Title)
	return item, true, nil
}

// DeleteItem reports whether an item was removed.
func (s *ItemService) DeleteItem(ctx context.Context, id int64) (bool, error) {
	n, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	s.notify(ctx, job.ActionDeleted, id, "")
	return true, nil
}

// notify is best effort: the mutation already succeeded. The publish keeps
// the request's values but not its cancellation, and gets its own deadline.
func (s *ItemService) notify(ctx context.Context, action string, id int64, title string) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyItemChanged(ctx, action, id, title); err != nil {
		s.loggerFor(ctx).Warn().
			Err(err).
			Str("action", action).
			Int64("item_id", id).
			Msg("failed to publish item change")
	}
}

// loggerFor prefers the request-scoped logger carried by ctx.
func (s *ItemService) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}
