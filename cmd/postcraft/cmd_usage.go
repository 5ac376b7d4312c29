package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"postcraft/internal/usage"
)

var usageJSON bool

// usageCmd prints the persisted call counters
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show generation and token usage",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Print raw JSON")
}

func runUsage(cmd *cobra.Command, args []string) error {
	app, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer app.Close()

	stats := app.tracker.Stats()
	out := cmd.OutOrStdout()
	if usageJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintln(out, titleStyle.Render("Total"))
	fmt.Fprintln(out, countsTable(map[string]usage.Counts{"all": stats.Total}).Render())
	for _, section := range []struct {
		title string
		m     map[string]usage.Counts
	}{
		{"By operation", stats.ByOperation},
		{"By model", stats.ByModel},
		{"By template", stats.ByTemplate},
	} {
		if len(section.m) == 0 {
			continue
		}
		fmt.Fprintln(out, titleStyle.Render(section.title))
		fmt.Fprintln(out, countsTable(section.m).Render())
	}
	return nil
}

func countsTable(m map[string]usage.Counts) *table.Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable("", "Calls", "Requested", "Succeeded", "Failed", "Input tokens", "Output tokens")
	for _, k := range keys {
		c := m[k]
		t.Row(k,
			strconv.FormatInt(c.Calls, 10),
			strconv.FormatInt(c.Requested, 10),
			strconv.FormatInt(c.Succeeded, 10),
			strconv.FormatInt(c.Failed, 10),
			strconv.FormatInt(c.InputTokens, 10),
			strconv.FormatInt(c.OutputTokens, 10),
		)
	}
	return t
}
