package main

import (
	"fmt"

	"github.com/deppfellow/itemsvc/internal/lib/email"
	"github.com/spf13/cobra"
)

var emailPreviewList bool

var emailPreviewCmd = &cobra.Command{
	Use:   "email-preview [template]",
	Short: "Render an email template with sample data",
	Long: `Render an email template with its preview data and print the HTML.

Examples:
  itemsvc email-preview                 # item_changed
  itemsvc email-preview item_changed > preview.html
  itemsvc email-preview --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmailPreview,
}

func init() {
	emailPreviewCmd.Flags().BoolVar(&emailPreviewList, "list", false, "List available templates")
	rootCmd.AddCommand(emailPreviewCmd)
}

func runEmailPreview(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if emailPreviewList {
		for _, tmpl := range email.Templates() {
			fmt.Fprintln(out, tmpl)
		}
		return nil
	}

	name := email.TemplateItemChanged
	if len(args) == 1 {
		name = email.Template(args[0])
	}

	html, err := email.Preview(name)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, html)
	return err
}
