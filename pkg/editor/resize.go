package editor

import (
	"time"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/timegrid"
)

// Edge names the grabbed border of an event during a resize.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

// ResizeController owns one resize interaction: Idle -> Resizing -> Idle.
// Every pointer sample is applied to the times captured at resize start,
// never incrementally, so repeated samples cannot drift.
type ResizeController struct {
	active bool

	target *event.Event
	edge   Edge
	startY int

	origStart time.Time
	origEnd   time.Time

	prevStart time.Time
	prevEnd   time.Time
}

// Active reports whether a resize is in flight.
func (r *ResizeController) Active() bool { return r.active }

// Target returns the event being resized, or nil.
func (r *ResizeController) Target() *event.Event {
	if !r.active {
		return nil
	}
	return r.target
}

// Begin captures the anchor state on pointer-down over an event edge.
func (r *ResizeController) Begin(ev *event.Event, edge Edge, pt Point) {
	r.active = true
	r.target = ev
	r.edge = edge
	r.startY = pt.Y
	r.origStart = ev.Start
	r.origEnd = ev.End
	r.prevStart = ev.Start
	r.prevEnd = ev.End
}

// Update applies a pointer sample and returns the clamped preview times.
// The delta is snapped to 10-minute steps relative to the resize-start
// state. Constraints, in order: the moving edge keeps at least the minimum
// duration, then it is clamped to the event's own day.
func (r *ResizeController) Update(pt Point) (start, end time.Time) {
	if !r.active {
		return r.prevStart, r.prevEnd
	}
	delta := timegrid.DeltaToDuration(pt.Y-r.startY, timegrid.SnapAdjust)

	start, end = r.origStart, r.origEnd
	switch r.edge {
	case EdgeTop:
		start = r.origStart.Add(delta)
		if end.Sub(start) < timegrid.MinDuration {
			start = end.Add(-timegrid.MinDuration)
		}
		dayStart := midnight(r.origStart)
		if start.Before(dayStart) {
			start = dayStart
		}
	case EdgeBottom:
		end = r.origEnd.Add(delta)
		if end.Sub(start) < timegrid.MinDuration {
			end = start.Add(timegrid.MinDuration)
		}
		dayEnd := midnight(r.origStart).Add(24*time.Hour - time.Minute)
		if end.After(dayEnd) {
			end = dayEnd
		}
	}
	r.prevStart, r.prevEnd = start, end
	return start, end
}

// Preview returns the last computed times without consuming a sample.
func (r *ResizeController) Preview() (start, end time.Time) {
	return r.prevStart, r.prevEnd
}

// End commits the interaction on pointer-up, mutating the target in place.
// changed is false when the pointer never moved the edge.
func (r *ResizeController) End() (target *event.Event, changed bool) {
	if !r.active {
		return nil, false
	}
	target = r.target
	changed = !r.prevStart.Equal(r.origStart) || !r.prevEnd.Equal(r.origEnd)
	if changed {
		target.Start = r.prevStart
		target.End = r.prevEnd
		target.Dirty = true
	}
	r.reset()
	return target, changed
}

// Cancel abandons the resize, restoring nothing because the target was
// never mutated mid-flight.
func (r *ResizeController) Cancel() {
	r.reset()
}

func (r *ResizeController) reset() {
	r.active = false
	r.target = nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
