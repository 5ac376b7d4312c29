// Package calendar renders the monthly day grid embedded in calendar prompts.
//
// The grid is a markdown table with Sunday as the first column. Image models
// copy it cell for cell, so the layout is fixed: five-character cells with the
// day number right-aligned to two characters.
package calendar

import (
	"strconv"
	"strings"
	"time"
)

const (
	header    = "### Calendar Grid\n\n"
	dayNames  = "| Sun | Mon | Tue | Wed | Thu | Fri | Sat |\n"
	separator = "|-----|-----|-----|-----|-----|-----|-----|\n"
	blankCell = "     |"

	maxWeeks = 6
)

// Grid is the structured form of a month. Zero marks a blank cell.
type Grid struct {
	Year  int
	Month int
	Weeks [][7]int
}

// DaysIn returns the number of days in month of year (Gregorian leap rule).
// Months outside 1-12 are normalized the way time.Date normalizes them.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of day 1, Sunday = 0.
func FirstWeekday(year, month int) int {
	return int(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// Build lays out the weeks of a month. Rows stop after the one holding the
// last day.
func Build(year, month int) Grid {
	first := FirstWeekday(year, month)
	days := DaysIn(year, month)

	g := Grid{Year: year, Month: month}
	day := 1
	for week := 0; week < maxWeeks; week++ {
		var row [7]int
		for slot := 0; slot < 7; slot++ {
			if (week == 0 && slot < first) || day > days {
				continue
			}
			row[slot] = day
			day++
		}
		g.Weeks = append(g.Weeks, row)
		if day > days {
			break
		}
	}
	return g
}

// Markdown renders the grid as a markdown table.
func (g Grid) Markdown() string {
	var b strings.Builder
	b.Grow(len(header) + len(dayNames) + len(separator) + len(g.Weeks)*(1+7*len(blankCell)+1))
	b.WriteString(header)
	b.WriteString(dayNames)
	b.WriteString(separator)
	for _, week := range g.Weeks {
		b.WriteByte('|')
		for _, d := range week {
			if d == 0 {
				b.WriteString(blankCell)
				continue
			}
			b.WriteString("  ")
			if d < 10 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(d))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Format renders the calendar grid for year and month. The month is not
// range-checked; callers pass 1-12.
func Format(year, month int) string {
	return Build(year, month).Markdown()
}

// FormatInput renders the grid from raw form values. Empty or non-numeric
// input yields "".
func FormatInput(year, month string) string {
	y, m, ok := ParseInput(year, month)
	if !ok {
		return ""
	}
	return Format(y, m)
}

// ParseInput parses form values for year and month. Surrounding whitespace is
// ignored.
func ParseInput(year, month string) (y, m int, ok bool) {
	year, month = strings.TrimSpace(year), strings.TrimSpace(month)
	if year == "" || month == "" {
		return 0, 0, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(month)
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}
