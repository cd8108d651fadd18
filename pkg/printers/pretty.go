// Package printers renders weeks for the terminal commands. The TUI has
// its own rendering; this is the plain scrollback form used by `week`,
// `pull` and `push`.
package printers

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/timegrid"
)

type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Println(title)
}

// Week prints one week: a header line, the event table ordered as cached,
// and a per-day attendance summary with totals.
func (pp *PrettyPrint) Week(snap cache.Snapshot) {
	start := timegrid.WeekStart(snap.Key.Year, snap.Key.Week)
	end := start.AddDate(0, 0, 6)

	t := color.New(color.Bold, color.Underline)
	_, _ = t.Printf("%s  %s .. %s", snap.Key, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if snap.Dirty {
		d := color.New(color.FgHiYellow, color.Italic)
		_, _ = d.Print("  (unsaved changes)")
	}
	fmt.Println("")

	pp.events(snap)
	pp.workTimes(snap)
}

func (pp *PrettyPrint) events(snap cache.Snapshot) {
	if len(snap.Events) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" no events\n\n")
		return
	}

	table := uitable.New()
	table.MaxColWidth = 40
	if pp.ShowID {
		table.AddRow("ID", "DAY", "TIME", "CODE", "PROJECT", "TITLE", "STATUS")
	} else {
		table.AddRow("DAY", "TIME", "CODE", "PROJECT", "TITLE", "STATUS")
	}

	var booked time.Duration
	for _, ev := range snap.Events {
		booked += ev.Duration()
		span := fmt.Sprintf("%s-%s", ev.Start.Format("15:04"), ev.End.Format("15:04"))
		day := ev.Start.Format("Mon 01/02")
		if pp.ShowID {
			table.AddRow(ev.ID, day, span, ev.ActivityCode(), ev.ProjectCode, ev.Title, string(ev.Status))
		} else {
			table.AddRow(day, span, ev.ActivityCode(), ev.ProjectCode, ev.Title, string(ev.Status))
		}
	}
	fmt.Println(table)

	c := color.New(color.Faint)
	_, _ = c.Printf("%d events, %s booked\n\n", len(snap.Events), formatDuration(booked))
}

func (pp *PrettyPrint) workTimes(snap cache.Snapshot) {
	if len(snap.WorkTimes) == 0 {
		return
	}

	table := uitable.New()
	table.AddRow("DAY", "IN", "OUT", "WORKED")

	var total time.Duration
	for _, wt := range snap.WorkTimes {
		in, out := "-", "-"
		if wt.Start != nil {
			in = wt.Start.Format("15:04")
		}
		if wt.End != nil {
			out = wt.End.Format("15:04")
		}
		worked := wt.Worked()
		total += worked
		table.AddRow(wt.Date.Format("Mon 01/02"), in, out, formatDuration(worked))
	}
	fmt.Println(table)

	c := color.New(color.Faint)
	_, _ = c.Printf("%s worked\n\n", formatDuration(total))
}

// DirtyWeeks prints the weeks with unsaved changes, one per line.
func (pp *PrettyPrint) DirtyWeeks(weeks []store.WeekKey) {
	if len(weeks) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" nothing to push\n\n")
		return
	}
	y := color.New(color.FgHiYellow)
	for _, key := range weeks {
		_, _ = y.Printf("  %s\n", key)
	}
	fmt.Println("")
}

// SaveResult prints one week's push outcome.
func (pp *PrettyPrint) SaveResult(key store.WeekKey, err error) {
	if err != nil {
		r := color.New(color.FgHiRed)
		_, _ = r.Printf("  %s  failed: %v\n", key, err)
		return
	}
	g := color.New(color.FgHiGreen)
	_, _ = g.Printf("  %s  saved\n", key)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
