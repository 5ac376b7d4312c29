package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"postcraft/internal/calendar"
)

var calendarMarkdown bool

// calendarCmd prints a month grid
var calendarCmd = &cobra.Command{
	Use:   "calendar YEAR MONTH",
	Short: "Print the day grid embedded in calendar prompts",
	Args:  cobra.ExactArgs(2),
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().BoolVar(&calendarMarkdown, "markdown", false, "Print the exact markdown block sent to the model")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	year, month, ok := calendar.ParseInput(args[0], args[1])
	if !ok || month < 1 || month > 12 {
		return fmt.Errorf("invalid year/month %q %q", args[0], args[1])
	}

	out := cmd.OutOrStdout()
	if calendarMarkdown {
		fmt.Fprint(out, calendar.Format(year, month))
		return nil
	}

	g := calendar.Build(year, month)
	t := newTable("Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat")
	for _, week := range g.Weeks {
		row := make([]string, 7)
		for i, d := range week {
			if d != 0 {
				row[i] = strconv.Itoa(d)
			}
		}
		t.Row(row...)
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s %d", time.Month(month), year)))
	fmt.Fprintln(out, t.Render())
	return nil
}
