// Package timegrid converts between wall-clock time and vertical pixel
// offsets inside a day column of the weekly grid.
package timegrid

import "time"

const (
	// HourHeight is the fixed pixel height of one hour, constant across
	// the whole grid.
	HourHeight = 48

	// SnapCreate is the granularity used when placing a new event.
	SnapCreate = 5 * time.Minute

	// SnapAdjust is the granularity used while dragging or resizing.
	SnapAdjust = 10 * time.Minute

	// MinDuration is the shortest event the grid will produce.
	MinDuration = 30 * time.Minute

	minutesPerDay = 24 * 60
)

// TimeToOffset returns the pixel offset of t measured from the top of its
// day column. Only the clock reading of t matters.
func TimeToOffset(t time.Time) int {
	return t.Hour()*HourHeight + t.Minute()*HourHeight/60
}

// OffsetToTime converts a pixel offset inside the column for day back into
// a wall-clock time, rounded to the nearest multiple of snap. Offsets
// outside the day clamp to its first or last slot rather than erroring.
func OffsetToTime(px int, day time.Time, snap time.Duration) time.Time {
	minutes := (px*60 + HourHeight/2) / HourHeight
	minutes = snapMinutes(minutes, snap)

	step := int(snap / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if minutes > minutesPerDay-step {
		minutes = minutesPerDay - step
	}

	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}

// DeltaToDuration converts a vertical pixel delta into a signed duration
// snapped to the nearest multiple of snap.
func DeltaToDuration(px int, snap time.Duration) time.Duration {
	minutes := px * 60 / HourHeight
	return time.Duration(snapMinutes(minutes, snap)) * time.Minute
}

// DayColumn returns the zero-based column index of day within the week
// beginning at weekStart. Days before the week clamp to 0, days past its
// end clamp to 6.
func DayColumn(weekStart, day time.Time) int {
	ws := midnight(weekStart)
	d := midnight(day)
	col := int(d.Sub(ws).Hours() / 24)
	if col < 0 {
		return 0
	}
	if col > 6 {
		return 6
	}
	return col
}

// DayForColumn returns midnight of the col-th day of the week beginning at
// weekStart.
func DayForColumn(weekStart time.Time, col int) time.Time {
	if col < 0 {
		col = 0
	}
	if col > 6 {
		col = 6
	}
	return midnight(weekStart).AddDate(0, 0, col)
}

// WeekStart returns midnight of the Monday of ISO week (year, week).
func WeekStart(year, week int) time.Time {
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.Local)
	_, w1 := jan4.ISOWeek()
	monday := jan4.AddDate(0, 0, -int(jan4.Weekday()-time.Monday))
	if jan4.Weekday() == time.Sunday {
		monday = jan4.AddDate(0, 0, -6)
	}
	return monday.AddDate(0, 0, (week-w1)*7)
}

func snapMinutes(minutes int, snap time.Duration) int {
	step := int(snap / time.Minute)
	if step <= 0 {
		return minutes
	}
	if minutes >= 0 {
		return (minutes + step/2) / step * step
	}
	return -((-minutes + step/2) / step * step)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
