package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/itemsvc/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	To, Action, Title string
	ItemID            int64
	OccurredAt        time.Time
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) SendItemChangedEmail(_ context.Context, to, action string, itemID int64, title string, occurredAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Action: action, Title: title, ItemID: itemID, OccurredAt: occurredAt})
	return nil
}

func newTestService(mailer itemMailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{
		logger:   &logger,
		mailer:   mailer,
		notifyTo: "ops@example.com",
		now:      time.Now,
	}
}

func TestItemChangedTask(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := ItemChangedPayload{Action: ActionUpdated, ItemID: 9, Title: "Buy bread", OccurredAt: at}

	task, err := NewItemChangedTask(in)
	require.NoError(t, err)
	assert.Equal(t, TaskItemChanged, task.Type())

	out, err := ParseItemChangedPayload(task)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleItemChangedSendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestService(mailer)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task, err := NewItemChangedTask(ItemChangedPayload{Action: ActionCreated, ItemID: 1, Title: "Buy milk", OccurredAt: at})
	require.NoError(t, err)

	require.NoError(t, j.mux().ProcessTask(context.Background(), task))

	want := []sentEmail{{To: "ops@example.com", Action: ActionCreated, Title: "Buy milk", ItemID: 1, OccurredAt: at}}
	if diff := cmp.Diff(want, mailer.sent); diff != "" {
		t.Errorf("sent emails mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleItemChangedWithoutMailer(t *testing.T) {
	j := newTestService(nil)

	task, err := NewItemChangedTask(ItemChangedPayload{Action: ActionDeleted, ItemID: 4})
	require.NoError(t, err)

	assert.NoError(t, j.handleItemChangedTask(context.Background(), task))
}

func TestHandleItemChangedMailerFailure(t *testing.T) {
	sendErr := errors.New("provider down")
	j := newTestService(&fakeMailer{err: sendErr})

	task, err := NewItemChangedTask(ItemChangedPayload{Action: ActionDeleted, ItemID: 4})
	require.NoError(t, err)

	err = j.handleItemChangedTask(context.Background(), task)
	assert.ErrorIs(t, err, sendErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleItemChangedMalformedPayload(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestService(mailer)

	err := j.handleItemChangedTask(context.Background(), asynq.NewTask(TaskItemChanged, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, mailer.sent)
}

func TestInitHandlers(t *testing.T) {
	logger := zerolog.Nop()

	cfg := config.DefaultConfig()
	j := newTestService(nil)
	j.notifyTo = ""
	j.InitHandlers(cfg, &logger)
	assert.Nil(t, j.mailer)

	cfg.Integration = &config.IntegrationConfig{ResendAPIKey: "re_test", NotifyEmail: "ops@example.com"}
	j.InitHandlers(cfg, &logger)
	assert.NotNil(t, j.mailer)
	assert.Equal(t, "ops@example.com", j.notifyTo)
}
