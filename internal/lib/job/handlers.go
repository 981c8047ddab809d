package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleItemChangedTask emails the operator about an item change. Without
// a configured mailer the change is only logged.
func (j *JobService) handleItemChangedTask(ctx context.Context, t *asynq.Task) error {
	p, err := ParseItemChangedPayload(t)
	if err != nil {
		// A malformed payload will never parse; don't retry it.
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskItemChanged).
		Str("action", p.Action).
		Int64("item_id", p.ItemID).
		Logger()

	if j.mailer == nil {
		log.Info().Msg("item changed, email notifications disabled")
		return nil
	}

	log.Info().Str("to", j.notifyTo).Msg("Processing item changed task")

	if err := j.mailer.SendItemChangedEmail(ctx, j.notifyTo, p.Action, p.ItemID, p.Title, p.OccurredAt); err != nil {
		log.Error().Err(err).Msg("Failed to send item changed email")
		return err
	}

	log.Info().Msg("Successfully sent item changed email")
	return nil
}
