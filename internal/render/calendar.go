package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

const (
	cellWidth   = 4
	maxDayNames = 3
)

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Calendar prints a month grid starting on Monday. Days listed in birthdays
// carry a marker and are named in a legend below the grid, at most three
// names per day. Today is highlighted when it falls in the month.
func Calendar(w io.Writer, month time.Month, year int, today time.Time, birthdays map[int][]string) error {
	s := DefaultStyles
	var b strings.Builder

	title := fmt.Sprintf("%s %d", month, year)
	pad := max(0, (cellWidth*7-len(title))/2)
	b.WriteString(strings.Repeat(" ", pad) + s.Title.Render(title) + "\n")

	// Labels and day numbers share the first three columns of a cell; the
	// fourth holds the birthday marker.
	var header strings.Builder
	for i, d := range weekdayHeader {
		cell := fmt.Sprintf("%*s", cellWidth-1, d)
		if i >= 5 {
			cell = s.Weekend.Render(cell)
		}
		header.WriteString(cell + " ")
	}
	b.WriteString(strings.TrimRight(header.String(), " ") + "\n")

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	var week strings.Builder
	week.WriteString(strings.Repeat(" ", cellWidth*offset))
	for day := 1; day <= days; day++ {
		mark := " "
		if len(birthdays[day]) > 0 {
			mark = "*"
		}
		cell := fmt.Sprintf("%*d%s", cellWidth-1, day, mark)
		switch {
		case today.Year() == year && today.Month() == month && today.Day() == day:
			cell = s.Today.Render(cell)
		case mark == "*":
			cell = s.Birthday.Render(cell)
		}
		week.WriteString(cell)
		if (offset+day)%7 == 0 || day == days {
			b.WriteString(strings.TrimRight(week.String(), " ") + "\n")
			week.Reset()
		}
	}

	if len(birthdays) > 0 {
		b.WriteString("\n")
		keys := make([]int, 0, len(birthdays))
		for d := range birthdays {
			keys = append(keys, d)
		}
		slices.Sort(keys)
		for _, d := range keys {
			names := birthdays[d]
			line := strings.Join(names[:min(len(names), maxDayNames)], ", ")
			if extra := len(names) - maxDayNames; extra > 0 {
				line += fmt.Sprintf(" +%d more", extra)
			}
			fmt.Fprintf(&b, "%s %s\n", s.Birthday.Render(fmt.Sprintf("%02d.%02d", d, int(month))), line)
		}
	}

	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return err
}
