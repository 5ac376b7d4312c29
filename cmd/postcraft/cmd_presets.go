package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var presetSaveForm formFlags

// presetsCmd groups the preset commands
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved form presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		list := app.studio.Presets.List()
		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No presets saved."))
			return nil
		}
		t := newTable("ID", "Name", "Template", "Created")
		for _, p := range list {
			tmpl := "-"
			if p.TemplateID != nil {
				tmpl = *p.TemplateID
			}
			t.Row(p.ID, p.Name, tmpl, p.CreatedAt.Local().Format(time.DateTime))
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a preset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer app.Close()

		p, ok := app.studio.Presets.Get(args[0])
		if !ok {
			return fmt.Errorf("preset %s not found", args[0])
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the form described by the flags as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		form, err := presetSaveForm.state(app.studio)
		if err != nil {
			return err
		}
		p, err := app.studio.SavePreset(ctx, form, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.studio.DeletePreset(ctx, args[0])
	},
}

func init() {
	presetSaveForm.bind(presetsSaveCmd)

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)
	presetsCmd.AddCommand(presetsSaveCmd)
	presetsCmd.AddCommand(presetsDeleteCmd)
}
