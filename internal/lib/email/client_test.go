package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

func TestRenderItemChanged(t *testing.T) {
	html, err := Render(TemplateItemChanged, ItemChangedData{
		Action: "Updated",
		ItemID: 7,
		Title:  "<b>Buy bread</b>",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Item Updated")
	assert.Contains(t, html, "#7")
	assert.Contains(t, html, "&lt;b&gt;Buy bread&lt;/b&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)
	assert.Error(t, err)
}

func TestPreviewEveryTemplate(t *testing.T) {
	for _, tmpl := range Templates() {
		html, err := Preview(tmpl)
		require.NoError(t, err, tmpl)
		assert.NotEmpty(t, html, tmpl)
	}
}

func TestSendItemChangedEmail(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	client := NewClientWithSender(sender, "", &logger)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := client.SendItemChangedEmail(context.Background(), "ops@example.com", "deleted", 3, "Walk dog", at)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Items <"+DefaultFromAddress+">", msg.From)
	assert.Equal(t, []string{"ops@example.com"}, msg.To)
	assert.Equal(t, "Item #3 deleted", msg.Subject)
	assert.Contains(t, msg.Html, "Action: Deleted")
	assert.Contains(t, msg.Html, "Fri, 02 Jan 2026 03:04:05 UTC")
}

func TestSendEmailProviderFailure(t *testing.T) {
	logger := zerolog.Nop()
	providerErr := errors.New("quota exceeded")
	client := NewClientWithSender(&fakeSender{err: providerErr}, "noreply@example.com", &logger)

	err := client.SendItemChangedEmail(context.Background(), "ops@example.com", "created", 1, "x", time.Now())
	assert.ErrorIs(t, err, providerErr)
}
