package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/timegrid"
	"tableflip.dev/shiwake/pkg/worktime"
)

// wtEditing reports whether the input field is live in work-time mode.
func (m *Model) wtEditing() bool { return m.input.Focused() }

func (m *Model) wtRecord(day int) worktime.WorkTime {
	date := timegrid.WeekStart(m.week.Year, m.week.Week).AddDate(0, 0, day)
	for _, wt := range m.snap.WorkTimes {
		if wt.Date.Year() == date.Year() && wt.Date.YearDay() == date.YearDay() {
			return wt
		}
	}
	return worktime.WorkTime{Date: date}
}

func (m *Model) updateWorkTime(msg tea.KeyMsg) tea.Cmd {
	if m.wtEditing() {
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			return m.commitWorkTime(value)
		case "esc":
			m.input.Reset()
			m.input.Blur()
			m.status = "edit cancelled"
			return nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return cmd
		}
	}

	switch msg.String() {
	case "esc", "q", "w":
		m.mode = modeNormal
		m.status = "NORMAL"
	case "h", "left":
		if m.wtDay > 0 {
			m.wtDay--
		}
	case "l", "right":
		if m.wtDay < 6 {
			m.wtDay++
		}
	case "i", "enter":
		wt := m.wtRecord(m.wtDay)
		m.input.Placeholder = "HH:MM-HH:MM"
		m.input.SetValue(spanValue(wt))
		m.input.CursorEnd()
		m.input.Focus()
	case "x":
		wt := m.wtRecord(m.wtDay)
		wt.Start, wt.End = nil, nil
		if err := m.cache.SetWorkTime(m.week, wt); err != nil {
			m.status = "ERR: " + err.Error()
		} else {
			m.status = "cleared"
			m.refresh()
		}
	}
	return nil
}

// commitWorkTime parses "HH:MM-HH:MM" and writes the record through the
// cache. An empty value clears the day.
func (m *Model) commitWorkTime(value string) tea.Cmd {
	wt := m.wtRecord(m.wtDay)
	if value == "" {
		wt.Start, wt.End = nil, nil
	} else {
		var sh, sm, eh, em int
		if _, err := fmt.Sscanf(value, "%d:%d-%d:%d", &sh, &sm, &eh, &em); err != nil {
			m.status = "ERR: expected HH:MM-HH:MM"
			return nil
		}
		if sh < 0 || sh > 23 || eh < 0 || eh > 23 || sm < 0 || sm > 59 || em < 0 || em > 59 {
			m.status = "ERR: clock out of range"
			return nil
		}
		wt.SetStart(sh, sm)
		wt.SetEnd(eh, em)
		if wt.Worked() == 0 {
			m.status = "ERR: end must come after start"
			return nil
		}
	}
	if err := m.cache.SetWorkTime(m.week, wt); err != nil {
		m.status = "ERR: " + err.Error()
		return nil
	}
	m.refresh()
	m.status = "work time updated"
	return nil
}

func spanValue(wt worktime.WorkTime) string {
	if wt.Start == nil || wt.End == nil {
		return ""
	}
	return wt.Start.Format("15:04") + "-" + wt.End.Format("15:04")
}

func (m *Model) renderWorkTimePane() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Work times " + m.week.String()))
	b.WriteString("\n\n")

	var total time.Duration
	for day := 0; day < 7; day++ {
		wt := m.wtRecord(day)
		marker := "  "
		if day == m.wtDay {
			marker = "→ "
		}
		span := spanValue(wt)
		if span == "" {
			span = "--:-- --:--"
		}
		worked := wt.Worked()
		total += worked
		b.WriteString(fmt.Sprintf("%s%s  %-12s %5.1fh\n",
			marker, wt.Date.Format("Mon 01/02"), span, worked.Hours()))
	}
	b.WriteString(fmt.Sprintf("\n  total %.1fh", total.Hours()))
	if m.wtEditing() {
		b.WriteString("\n\n  " + m.input.View())
	}
	return b.String()
}
