package timegrid

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestTimeToOffset(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         int
	}{
		{0, 0, 0},
		{1, 0, HourHeight},
		{9, 30, 9*HourHeight + HourHeight/2},
		{23, 55, 23*HourHeight + 55*HourHeight/60},
	}
	for _, tt := range tests {
		at := time.Date(2025, time.May, 12, tt.hour, tt.minute, 0, 0, time.Local)
		if got := TimeToOffset(at); got != tt.want {
			t.Fatalf("TimeToOffset(%02d:%02d) = %d, want %d", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	d := day(2025, time.May, 12)
	for _, snap := range []time.Duration{SnapCreate, SnapAdjust} {
		step := int(snap / time.Minute)
		for minutes := 0; minutes < 24*60; minutes += step {
			at := time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, time.Local)
			got := OffsetToTime(TimeToOffset(at), d, snap)
			if got.Hour() != at.Hour() || got.Minute() != at.Minute() {
				t.Fatalf("snap %v: round trip of %02d:%02d gave %02d:%02d",
					snap, at.Hour(), at.Minute(), got.Hour(), got.Minute())
			}
		}
	}
}

func TestOffsetToTimeClamps(t *testing.T) {
	d := day(2025, time.May, 12)

	before := OffsetToTime(-100, d, SnapCreate)
	if before.Hour() != 0 || before.Minute() != 0 {
		t.Fatalf("negative offset should clamp to 00:00, got %02d:%02d", before.Hour(), before.Minute())
	}

	after := OffsetToTime(25*HourHeight, d, SnapCreate)
	if after.Hour() != 23 || after.Minute() != 55 {
		t.Fatalf("oversized offset should clamp to 23:55, got %02d:%02d", after.Hour(), after.Minute())
	}
	if after.Day() != d.Day() {
		t.Fatalf("clamped time left the day: %v", after)
	}
}

func TestDeltaToDuration(t *testing.T) {
	tests := []struct {
		px   int
		snap time.Duration
		want time.Duration
	}{
		{0, SnapAdjust, 0},
		{HourHeight, SnapAdjust, time.Hour},
		{HourHeight / 2, SnapAdjust, 30 * time.Minute},
		{7, SnapAdjust, 10 * time.Minute},  // 8.75min -> 10
		{-7, SnapAdjust, -10 * time.Minute},
		{3, SnapAdjust, 0}, // 3.75min -> 0
	}
	for _, tt := range tests {
		if got := DeltaToDuration(tt.px, tt.snap); got != tt.want {
			t.Fatalf("DeltaToDuration(%d, %v) = %v, want %v", tt.px, tt.snap, got, tt.want)
		}
	}
}

func TestDayColumn(t *testing.T) {
	monday := day(2025, time.May, 12)
	if got := DayColumn(monday, monday); got != 0 {
		t.Fatalf("monday column = %d, want 0", got)
	}
	if got := DayColumn(monday, day(2025, time.May, 14)); got != 2 {
		t.Fatalf("wednesday column = %d, want 2", got)
	}
	if got := DayColumn(monday, day(2025, time.May, 30)); got != 6 {
		t.Fatalf("out-of-week day should clamp to 6, got %d", got)
	}
	if got := DayColumn(monday, day(2025, time.May, 1)); got != 0 {
		t.Fatalf("day before week should clamp to 0, got %d", got)
	}
}

func TestWeekStart(t *testing.T) {
	ws := WeekStart(2025, 20)
	if ws.Weekday() != time.Monday {
		t.Fatalf("week start should be a Monday, got %v", ws.Weekday())
	}
	y, w := ws.ISOWeek()
	if y != 2025 || w != 20 {
		t.Fatalf("WeekStart(2025, 20).ISOWeek() = (%d, %d)", y, w)
	}
}

func TestDayForColumnRoundTrip(t *testing.T) {
	ws := WeekStart(2025, 20)
	for col := 0; col < 7; col++ {
		if got := DayColumn(ws, DayForColumn(ws, col)); got != col {
			t.Fatalf("column %d round-tripped to %d", col, got)
		}
	}
}
