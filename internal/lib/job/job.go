// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// The only task today is item:changed, which emails the operator when an
// item is created, updated or deleted.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/itemsvc/internal/config"
	"github.com/deppfellow/itemsvc/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// itemMailer sends the notification email for an item change.
type itemMailer interface {
	SendItemChangedEmail(ctx context.Context, to, action string, itemID int64, title string, occurredAt time.Time) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server *asynq.Server
	logger *zerolog.Logger

	mailer   itemMailer
	notifyTo string
	now      func() time.Time
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// It builds both an asynq.Client (to push jobs) and an asynq.Server (to
// process jobs) with weighted queues so "critical" tasks get more worker
// share. cfg.Redis must be set.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	j := &JobService{
		Client: client,
		server: server,
		logger: logger,
		now:    time.Now,
	}
	j.InitHandlers(cfg, logger)

	return j
}

// InitHandlers wires the dependencies used by task handlers. Emails are only
// sent when config.NotificationsEnabled reports true.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	if cfg.NotificationsEnabled() {
		j.mailer = email.NewClient(cfg, logger)
		j.notifyTo = cfg.Integration.NotifyEmail
	}
}

// Start registers task handlers and starts the worker server in the
// background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskItemChanged, j.handleItemChangedTask)
	return mux
}

// NotifyItemChanged enqueues an item:changed task.
func (j *JobService) NotifyItemChanged(ctx context.Context, action string, itemID int64, title string) error {
	task, err := NewItemChangedTask(ItemChangedPayload{
		Action:     action,
		ItemID:     itemID,
		Title:      title,
		OccurredAt: j.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to build %s task: %w", TaskItemChanged, err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", TaskItemChanged, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("action", action).
		Int64("item_id", itemID).
		Msg("enqueued item change notification")

	return nil
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}
