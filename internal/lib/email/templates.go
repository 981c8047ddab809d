package email

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateItemChanged corresponds to templates/item_changed.html
	TemplateItemChanged Template = "item_changed"
)

// FileName is the template's file name inside the embedded templates dir.
func (t Template) FileName() string {
	return string(t) + ".html"
}

// Templates lists every template shipped with the binary.
func Templates() []Template {
	return []Template{TemplateItemChanged}
}
