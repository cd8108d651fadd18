package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/editor"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/timegrid"
)

// gridPoint converts a terminal coordinate into a day column and a pixel
// point in that column. ok is false outside the grid body.
func (m *Model) gridPoint(x, y int) (col int, pt editor.Point, ok bool) {
	row := m.topRow + y - headerRows
	if y < headerRows || row < 0 || row >= totalRows {
		return 0, editor.Point{}, false
	}
	if x < gutterWidth {
		return 0, editor.Point{}, false
	}
	col = (x - gutterWidth) / m.colWidth()
	if col > 6 {
		col = 6
	}
	return col, editor.Point{X: x, Y: row * pxPerRow}, true
}

func (m *Model) dayForCol(col int) time.Time {
	return timegrid.DayForColumn(timegrid.WeekStart(m.week.Year, m.week.Week), col)
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseLeft:
		if !m.pressed {
			m.pressed = true
			return m.mousePress(msg)
		}
		return m.mouseMove(msg)
	case tea.MouseMotion:
		if m.pressed {
			return m.mouseMove(msg)
		}
	case tea.MouseRelease:
		if m.pressed {
			m.pressed = false
			return m.mouseRelease(msg)
		}
	case tea.MouseWheelUp:
		m.scroll(-3)
	case tea.MouseWheelDown:
		m.scroll(3)
	}
	return nil
}

func (m *Model) mousePress(msg tea.MouseMsg) tea.Cmd {
	col, pt, ok := m.gridPoint(msg.X, msg.Y)
	if !ok {
		m.pressed = false
		return nil
	}
	m.dragPt = pt
	m.dragCol = col

	row := pt.Y / pxPerRow
	rects := m.rects()
	r := rectAt(rects, col, row)
	if r == nil {
		// Empty slot: release without movement will create here.
		start := timegrid.OffsetToTime(pt.Y, m.dayForCol(col), timegrid.SnapCreate)
		m.pendingCreate = &start
		return nil
	}

	ev := m.eventByID(r.id)
	if ev == nil {
		return nil
	}
	m.selected = ev.ID

	// Single-row blocks always drag; otherwise the boundary rows resize.
	switch {
	case r.bottom-r.top > 1 && row == r.top:
		m.resize.Begin(ev, editor.EdgeTop, pt)
	case r.bottom-r.top > 1 && row == r.bottom-1:
		m.resize.Begin(ev, editor.EdgeBottom, pt)
	default:
		m.drag.Press(ev, pt, r.top*pxPerRow)
	}
	return nil
}

func (m *Model) mouseMove(msg tea.MouseMsg) tea.Cmd {
	col, pt, ok := m.gridPoint(msg.X, msg.Y)
	if !ok {
		return nil
	}
	m.dragPt = pt
	m.dragCol = col

	if m.resize.Active() {
		m.resize.Update(pt)
		return nil
	}
	if m.drag.Grabbed() != nil {
		m.pendingCreate = nil
		if m.drag.Move(pt) == editor.DragDragging {
			m.status = "dragging (ctrl to copy)"
		}
	}
	return nil
}

func (m *Model) mouseRelease(msg tea.MouseMsg) tea.Cmd {
	col, pt, ok := m.gridPoint(msg.X, msg.Y)
	if ok {
		m.dragPt = pt
		m.dragCol = col
	}

	if m.resize.Active() {
		if !ok {
			m.resize.Cancel()
			return nil
		}
		m.resize.Update(pt)
		target, changed := m.resize.End()
		if changed {
			return m.upsert(target, "resized")
		}
		return nil
	}

	if m.drag.Grabbed() != nil {
		if !ok {
			m.drag.Cancel()
			m.status = "drag cancelled"
			return nil
		}
		drop, committed := m.drag.Drop(m.dayForCol(m.dragCol), pt.Y, msg.Ctrl)
		if !committed {
			// A click, not a drag; selection already moved on press.
			return nil
		}
		m.selected = drop.Event.ID
		if drop.Kind == editor.DropCopy {
			return m.upsert(drop.Event, "copied")
		}
		return m.upsert(drop.Event, "moved")
	}

	if m.pendingCreate != nil {
		start := *m.pendingCreate
		m.pendingCreate = nil
		return m.beginCreate(start)
	}
	return nil
}

// beginCreate opens the classification picker for a new block of the
// minimum grid duration, confined to the clicked day.
func (m *Model) beginCreate(start time.Time) tea.Cmd {
	end := start.Add(timegrid.MinDuration)
	if dayEnd := midnight(start).Add(24*time.Hour - time.Minute); end.After(dayEnd) {
		end = dayEnd
	}
	draft := event.New(m.employee, start, end, nil)
	draft.Dirty = true
	m.beginPicker(draft, true)
	return nil
}
