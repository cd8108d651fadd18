// Package editor implements the pointer-driven move/copy and resize state
// machines for the weekly grid. Controllers are pure: they consume pointer
// samples and produce committed times; writing through the cache is the
// caller's job.
package editor

import (
	"time"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/timegrid"
)

// Point is a pointer position in grid pixels.
type Point struct {
	X int
	Y int
}

// DragState tracks the drag machine: Idle -> Pending -> Dragging.
type DragState int

const (
	DragIdle DragState = iota
	// DragPending means the button is down but the pointer has not yet
	// moved far enough to rule out a plain click.
	DragPending
	DragDragging
)

// dragThreshold is the minimum pointer travel, in pixels, before a press
// becomes a drag rather than a click.
const dragThreshold = 5

// DropKind says how a drop was resolved.
type DropKind int

const (
	// DropMove mutates the grabbed event in place.
	DropMove DropKind = iota
	// DropCopy leaves the original untouched and inserts a clone.
	DropCopy
)

// Drop is the outcome of a completed drag.
type Drop struct {
	Kind DropKind
	// Event is the grabbed event for a move, or the synthesized clone for
	// a copy. Times are already rewritten.
	Event *event.Event
}

// DragController owns one drag interaction at a time.
type DragController struct {
	state DragState

	grabbed *event.Event
	press   Point
	// grabOffsetY is where inside the event body the pointer grabbed it,
	// so the visual top edge follows the pointer minus this offset.
	grabOffsetY int
}

// State reports the current machine state.
func (d *DragController) State() DragState { return d.state }

// Grabbed returns the event under drag, or nil.
func (d *DragController) Grabbed() *event.Event {
	if d.state == DragIdle {
		return nil
	}
	return d.grabbed
}

// Press arms the controller on a pointer-down over ev. eventTopY is the
// pixel offset of the event's top edge in its day column.
func (d *DragController) Press(ev *event.Event, pt Point, eventTopY int) {
	d.state = DragPending
	d.grabbed = ev
	d.press = pt
	d.grabOffsetY = pt.Y - eventTopY
}

// Move feeds a pointer sample. The controller promotes Pending to Dragging
// once the pointer has travelled past the click threshold.
func (d *DragController) Move(pt Point) DragState {
	if d.state == DragPending {
		dx := abs(pt.X - d.press.X)
		dy := abs(pt.Y - d.press.Y)
		if dx >= dragThreshold || dy >= dragThreshold {
			d.state = DragDragging
		}
	}
	return d.state
}

// TopOffset returns the pixel offset the event's top edge should render at
// for the given pointer sample.
func (d *DragController) TopOffset(pt Point) int {
	return pt.Y - d.grabOffsetY
}

// Drop completes the drag onto the slot at offsetY within day. Duration is
// preserved. With copyMod held the original stays put and a clone with a
// freshly derived id is returned instead.
//
// A release without a prior threshold-crossing move is a click, not a
// drag, and reports ok=false.
func (d *DragController) Drop(day time.Time, offsetY int, copyMod bool) (Drop, bool) {
	defer d.reset()
	if d.state != DragDragging || d.grabbed == nil {
		return Drop{}, false
	}

	duration := d.grabbed.Duration()
	start := timegrid.OffsetToTime(offsetY-d.grabOffsetY, day, timegrid.SnapAdjust)
	end := start.Add(duration)

	if copyMod {
		clone := d.grabbed.Clone()
		clone.Start = start
		clone.End = end
		clone.ID = event.NewID(clone.EmployeeID, start)
		clone.Dirty = true
		return Drop{Kind: DropCopy, Event: clone}, true
	}

	d.grabbed.Start = start
	d.grabbed.End = end
	d.grabbed.Dirty = true
	return Drop{Kind: DropMove, Event: d.grabbed}, true
}

// Cancel abandons the interaction; the grabbed event is left unchanged.
// Used when the pointer is released outside any valid slot.
func (d *DragController) Cancel() {
	d.reset()
}

func (d *DragController) reset() {
	d.state = DragIdle
	d.grabbed = nil
	d.grabOffsetY = 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
