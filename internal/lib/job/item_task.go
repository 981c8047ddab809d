package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskItemChanged is the job type name stored in Redis.
	// Asynq uses task type strings to route to handlers.
	TaskItemChanged = "item:changed"
)

// Item change actions carried in ItemChangedPayload.Action.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ItemChangedPayload is the JSON payload for the item change task.
type ItemChangedPayload struct {
	Action     string    `json:"action"`
	ItemID     int64     `json:"item_id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewItemChangedTask constructs an Asynq task announcing an item change.
//
// Notifications are low value once stale, so the task retries at most
// 3 times and is dropped after 30 seconds of processing.
func NewItemChangedTask(p ItemChangedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskItemChanged,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// ParseItemChangedPayload decodes a task created by NewItemChangedTask.
func ParseItemChangedPayload(t *asynq.Task) (ItemChangedPayload, error) {
	var p ItemChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal item changed payload: %w", err)
	}
	return p, nil
}
