package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/shiwake/pkg/editor"
	"tableflip.dev/shiwake/pkg/timegrid"
)

// The grid renders one terminal row per ten simulated minutes, so the
// pixel-based coordinate mapper divides evenly into rows.
const (
	rowsPerHour = 6
	pxPerRow    = timegrid.HourHeight / rowsPerHour
	totalRows   = 24 * rowsPerHour

	headerRows  = 2
	footerRows  = 2
	gutterWidth = 6
)

// eventRect is an event's on-grid footprint in grid rows; bottom is
// exclusive.
type eventRect struct {
	id     string
	col    int
	top    int
	bottom int
}

func (m *Model) gridRows() int {
	rows := m.termHeight - headerRows - footerRows
	if m.banner != "" {
		rows--
	}
	if rows < rowsPerHour {
		rows = rowsPerHour
	}
	return rows
}

func (m *Model) colWidth() int {
	w := (m.termWidth - gutterWidth) / 7
	if w < 8 {
		w = 8
	}
	return w
}

func rowForPx(px int) int {
	return px / pxPerRow
}

func rowCeil(px int) int {
	return (px + pxPerRow - 1) / pxPerRow
}

// rects computes every event's footprint, substituting drag and resize
// previews for the interaction target.
func (m *Model) rects() []eventRect {
	weekStart := timegrid.WeekStart(m.week.Year, m.week.Week)
	rects := make([]eventRect, 0, len(m.snap.Events))
	for _, ev := range m.snap.Events {
		start, end := ev.Start, ev.End
		col := timegrid.DayColumn(weekStart, start)

		if grabbed := m.drag.Grabbed(); grabbed != nil && grabbed.ID == ev.ID {
			if m.drag.State() == editor.DragDragging {
				col = m.dragCol
				topPx := m.drag.TopOffset(m.dragPt)
				rows := rowCeil(timegrid.TimeToOffset(end)) - rowForPx(timegrid.TimeToOffset(start))
				top := rowForPx(topPx)
				rects = append(rects, clampRect(eventRect{id: ev.ID, col: col, top: top, bottom: top + rows}))
				continue
			}
		}
		if target := m.resize.Target(); target != nil && target.ID == ev.ID {
			start, end = m.resize.Preview()
		}

		rects = append(rects, clampRect(eventRect{
			id:     ev.ID,
			col:    col,
			top:    rowForPx(timegrid.TimeToOffset(start)),
			bottom: rowCeil(offsetForEnd(start, end)),
		}))
	}
	return rects
}

// offsetForEnd measures the end edge from the event's own day, so a block
// ending at 23:59 still fills its final row.
func offsetForEnd(start, end time.Time) int {
	return timegrid.TimeToOffset(start) + int(end.Sub(start)/time.Minute)*timegrid.HourHeight/60
}

func clampRect(r eventRect) eventRect {
	if r.top < 0 {
		r.top = 0
	}
	if r.bottom > totalRows {
		r.bottom = totalRows
	}
	if r.bottom <= r.top {
		r.bottom = r.top + 1
	}
	if r.col < 0 {
		r.col = 0
	}
	if r.col > 6 {
		r.col = 6
	}
	return r
}

func rectAt(rects []eventRect, col, row int) *eventRect {
	for i := range rects {
		r := &rects[i]
		if r.col == col && row >= r.top && row < r.bottom {
			return r
		}
	}
	return nil
}

// workRows reports the grid row span covered by the day's work time.
func (m *Model) workRows(col int) (top, bottom int, ok bool) {
	for _, wt := range m.snap.WorkTimes {
		weekStart := timegrid.WeekStart(m.week.Year, m.week.Week)
		if timegrid.DayColumn(weekStart, wt.Date) != col {
			continue
		}
		if wt.Start == nil || wt.End == nil {
			return 0, 0, false
		}
		return rowForPx(timegrid.TimeToOffset(*wt.Start)), rowCeil(timegrid.TimeToOffset(*wt.End)), true
	}
	return 0, 0, false
}

// View renders header, grid, optional banner, and footer.
func (m Model) View() string {
	if m.termWidth == 0 {
		m.termWidth = 112
		m.termHeight = 32
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderDayHeadings())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())

	if m.banner != "" {
		b.WriteString(m.theme.Banner.Render(m.banner))
		b.WriteString("\n")
	}
	b.WriteString(m.renderOverlay())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	start := timegrid.WeekStart(m.week.Year, m.week.Week)
	title := fmt.Sprintf("%s  %s .. %s", m.week, start.Format("2006-01-02"), start.AddDate(0, 0, 6).Format("2006-01-02"))
	out := m.theme.Title.Render(title)
	if m.snap.Dirty {
		out += "  " + m.theme.Dirty.Render("● unsaved")
	}
	return out
}

func (m *Model) renderDayHeadings() string {
	weekStart := timegrid.WeekStart(m.week.Year, m.week.Week)
	w := m.colWidth()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for col := 0; col < 7; col++ {
		day := weekStart.AddDate(0, 0, col)
		label := day.Format("Mon 01/02")
		if worked := m.workedFor(col); worked != "" {
			label += " " + worked
		}
		b.WriteString(m.theme.DayHeading.Render(pad(label, w)))
	}
	return b.String()
}

func (m *Model) workedFor(col int) string {
	weekStart := timegrid.WeekStart(m.week.Year, m.week.Week)
	for _, wt := range m.snap.WorkTimes {
		if timegrid.DayColumn(weekStart, wt.Date) != col {
			continue
		}
		d := wt.Worked()
		if d == 0 {
			return ""
		}
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return ""
}

func (m *Model) renderGrid() string {
	rects := m.rects()
	w := m.colWidth()
	rows := m.gridRows()

	var b strings.Builder
	for i := 0; i < rows; i++ {
		row := m.topRow + i
		if row >= totalRows {
			break
		}
		b.WriteString(m.renderGutter(row))
		for col := 0; col < 7; col++ {
			b.WriteString(m.renderCell(rects, col, row, w))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderGutter(row int) string {
	if row%rowsPerHour == 0 {
		return m.theme.Gutter.Render(fmt.Sprintf("%02d:00 ", row/rowsPerHour))
	}
	return strings.Repeat(" ", gutterWidth)
}

func (m *Model) renderCell(rects []eventRect, col, row, w int) string {
	if r := rectAt(rects, col, row); r != nil {
		ev := m.eventByID(r.id)
		if ev == nil {
			return strings.Repeat(" ", w)
		}
		style := m.theme.Block(ev.Color(), ev.ID == m.selected)
		if row == r.top {
			label := strings.TrimSpace(ev.ActivityCode() + " " + displayName(ev))
			return style.Render(pad(" "+label, w))
		}
		if row == r.top+1 && r.bottom-r.top > 1 {
			span := fmt.Sprintf(" %s-%s", ev.Start.Format("15:04"), ev.End.Format("15:04"))
			if target := m.resize.Target(); target != nil && target.ID == ev.ID {
				ps, pe := m.resize.Preview()
				span = fmt.Sprintf(" %s-%s", ps.Format("15:04"), pe.Format("15:04"))
			}
			return style.Render(pad(span, w))
		}
		return style.Render(strings.Repeat(" ", w))
	}

	top, bottom, ok := m.workRows(col)
	inWork := ok && row >= top && row < bottom
	if row%rowsPerHour == 0 {
		return m.theme.HourLine.Render(strings.Repeat("╌", w))
	}
	if inWork {
		return m.theme.WorkShade.Render(strings.Repeat(" ", w))
	}
	return strings.Repeat(" ", w)
}

func (m *Model) renderFooter() string {
	modeStr := map[mode]string{
		modeNormal:   "NORMAL",
		modeEdit:     "EDIT",
		modeClassify: "CLASSIFY",
		modeWorkTime: "WORKTIME",
		modeConfirm:  "CONFIRM",
		modeHelp:     "HELP",
	}[m.mode]

	line := m.theme.Footer.Mode.Render("["+modeStr+"]") + " " + m.theme.Footer.Status.Render(m.status)
	help := m.theme.Footer.Help.Render("h/l week  tab select  i edit  c classify  x status  d delete  w worktime  s save  q quit  ? help")
	return line + "\n" + help
}

// renderOverlay renders the modal body for the current mode, or nothing.
func (m *Model) renderOverlay() string {
	switch m.mode {
	case modeEdit:
		prompt := "Title: "
		if m.field == editProject {
			prompt = "Project: "
		}
		return m.theme.Overlay.Render(prompt+m.input.View()) + "\n"
	case modeConfirm:
		return m.theme.Overlay.Render(m.confirm.prompt) + "\n"
	case modeClassify:
		return m.theme.Overlay.Render(m.picker.view(m.theme)) + "\n"
	case modeWorkTime:
		return m.theme.Overlay.Render(m.renderWorkTimePane()) + "\n"
	case modeHelp:
		return m.theme.Overlay.Render(helpText) + "\n"
	}
	return ""
}

const helpText = `Weekly grid

  mouse        click empty slot: new event   drag: move (ctrl: copy)
               drag top/bottom edge: resize
  h/l [ ]      previous / next week          t: this week
  j/k g/G      scroll                        tab: cycle selection
  i / enter    edit title                    p: edit project code
  c            classify                      x: cycle status
  d            delete                        o: new event
  w            work times                    r: reload week
  s / S        save week / save all          q: quit`

func pad(s string, w int) string {
	if lipgloss.Width(s) >= w {
		return truncate(s, w)
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}

func truncate(s string, w int) string {
	out := ""
	for _, r := range s {
		if lipgloss.Width(out+string(r)) > w {
			break
		}
		out += string(r)
	}
	if pad := w - lipgloss.Width(out); pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	return out
}
