package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// templatesCmd groups the template table commands
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the template table",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		t := newTable("ID", "Title", "Fields")
		for _, tmpl := range app.studio.Templates.List() {
			ids := make([]string, len(tmpl.Fields))
			for i, f := range tmpl.Fields {
				ids[i] = f.ID
			}
			t.Row(tmpl.ID, tmpl.Title, strings.Join(ids, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a template's fields and base prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		tmpl, ok := app.studio.Templates.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown template %q (have: %s)", args[0], strings.Join(app.studio.Templates.IDs(), ", "))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(tmpl.Title))
		if tmpl.Description != "" {
			fmt.Fprintln(out, mutedStyle.Render(tmpl.Description))
		}
		t := newTable("Field", "Label", "Kind", "Placeholder")
		for _, f := range tmpl.Fields {
			t.Row(f.ID, f.Label, string(f.Kind), f.Placeholder)
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, tmpl.BasePrompt)
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}
