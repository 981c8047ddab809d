package email

// PreviewData contains sample template data for local preview.
//
//	PreviewData[TemplateItemChanged].Title == "Buy milk"
var PreviewData = map[Template]any{
	TemplateItemChanged: ItemChangedData{
		Action:     "Created",
		ItemID:     1,
		Title:      "Buy milk",
		OccurredAt: "Mon, 02 Jan 2006 15:04:05 UTC",
	},
}

// Preview renders templateName with its sample data.
func Preview(templateName Template) (string, error) {
	data, ok := PreviewData[templateName]
	if !ok {
		data = map[string]string{}
	}
	return Render(templateName, data)
}
