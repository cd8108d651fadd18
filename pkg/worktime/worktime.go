// Package worktime tracks per-day clock-in/clock-out records, which live
// alongside the weekly events but have an independent lifecycle.
package worktime

import (
	"fmt"
	"time"
)

// WorkTime is one calendar day's attendance record. Start and End are nil
// until the day has a clock-in or clock-out.
type WorkTime struct {
	Date  time.Time  `json:"date"`
	Start *time.Time `json:"startTime,omitempty"`
	End   *time.Time `json:"endTime,omitempty"`
}

// SetStart records the clock-in on the record's own date.
func (w *WorkTime) SetStart(hour, min int) {
	t := atClock(w.Date, hour, min)
	w.Start = &t
}

// SetEnd records the clock-out on the record's own date.
func (w *WorkTime) SetEnd(hour, min int) {
	t := atClock(w.Date, hour, min)
	w.End = &t
}

// Worked reports the day's span, or zero when either side is missing.
func (w *WorkTime) Worked() time.Duration {
	if w.Start == nil || w.End == nil {
		return 0
	}
	d := w.End.Sub(*w.Start)
	if d < 0 {
		return 0
	}
	return d
}

// DayDefault is a weekday's default clock-in/clock-out, "HH:MM" strings so
// they can come straight out of configuration.
type DayDefault struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Defaults maps weekdays to their default work times. A missing weekday
// means no default record for that day.
type Defaults map[time.Weekday]DayDefault

// StandardDefaults is the global fallback table used when a user has no
// per-user defaults configured: weekdays 09:00-17:30, weekends off.
var StandardDefaults = Defaults{
	time.Monday:    {Start: "09:00", End: "17:30"},
	time.Tuesday:   {Start: "09:00", End: "17:30"},
	time.Wednesday: {Start: "09:00", End: "17:30"},
	time.Thursday:  {Start: "09:00", End: "17:30"},
	time.Friday:    {Start: "09:00", End: "17:30"},
}

// Materialize builds the seven records for the week beginning at weekStart,
// filling in defaults where the table has them.
func (d Defaults) Materialize(weekStart time.Time) []WorkTime {
	week := make([]WorkTime, 7)
	for i := range week {
		day := weekStart.AddDate(0, 0, i)
		week[i] = WorkTime{Date: day}
		def, ok := d[day.Weekday()]
		if !ok {
			continue
		}
		if h, m, err := parseClock(def.Start); err == nil {
			week[i].SetStart(h, m)
		}
		if h, m, err := parseClock(def.End); err == nil {
			week[i].SetEnd(h, m)
		}
	}
	return week
}

// ParseDefaults converts a config map keyed by lowercase weekday names
// ("monday".."sunday") with "HH:MM-HH:MM" values into a Defaults table.
// Unknown keys and malformed values are skipped.
func ParseDefaults(raw map[string]string) Defaults {
	if len(raw) == 0 {
		return nil
	}
	names := map[string]time.Weekday{
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
		"sunday":    time.Sunday,
	}
	d := make(Defaults)
	for key, val := range raw {
		wd, ok := names[key]
		if !ok {
			continue
		}
		var sh, sm, eh, em int
		if _, err := fmt.Sscanf(val, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
			continue
		}
		d[wd] = DayDefault{
			Start: fmt.Sprintf("%02d:%02d", sh, sm),
			End:   fmt.Sprintf("%02d:%02d", eh, em),
		}
	}
	if len(d) == 0 {
		return nil
	}
	return d
}

func parseClock(s string) (hour, min int, err error) {
	if _, err = fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return 0, 0, fmt.Errorf("worktime: bad clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("worktime: clock %q out of range", s)
	}
	return hour, min, nil
}

func atClock(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}
