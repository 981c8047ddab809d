package email

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ItemChangedData is the data the item_changed template expects.
type ItemChangedData struct {
	Action     string
	ItemID     int64
	Title      string
	OccurredAt string
}

// SendItemChangedEmail tells the operator that an item was created,
// updated or deleted.
func (c *Client) SendItemChangedEmail(ctx context.Context, to, action string, itemID int64, title string, occurredAt time.Time) error {
	data := ItemChangedData{
		Action:     cases.Title(language.English).String(action),
		ItemID:     itemID,
		Title:      title,
		OccurredAt: occurredAt.UTC().Format(time.RFC1123),
	}

	return c.SendEmail(
		ctx,
		to,
		fmt.Sprintf("Item #%d %s", itemID, action),
		TemplateItemChanged,
		data,
	)
}
