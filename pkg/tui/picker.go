package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/classify"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/tui/theme"
)

// pickerStage walks the classification tabs in order. Project paths carry
// two extra stages the indirect branch never sees.
type pickerStage int

const (
	stageTop pickerStage = iota
	stageSub
	stageDetail
	stageOption
	stageProject
	stageEquip
)

var topTabs = []classify.Top{classify.TopProject, classify.TopIndirect}

type picker struct {
	target   *event.Event
	creating bool

	stage     pickerStage
	topIdx    int
	subIdx    int
	detailIdx int
	optionIdx int
}

func (p *picker) top() classify.Top { return topTabs[p.topIdx] }

func (p *picker) subs() []string { return classify.SubTabs(p.top()) }

func (p *picker) details() []string {
	subs := p.subs()
	if p.subIdx >= len(subs) {
		return nil
	}
	return classify.Details(p.top(), subs[p.subIdx])
}

func (p *picker) isPurchase() bool {
	subs := p.subs()
	return p.top() == classify.TopProject && p.subIdx < len(subs) && subs[p.subIdx] == classify.PurchaseSub
}

// beginPicker opens the classification overlay over target. When target
// already has a classification the cursor starts on it.
func (m *Model) beginPicker(target *event.Event, creating bool) {
	p := picker{target: target, creating: creating}
	if target.Class != nil {
		path := target.Class.Path()
		for i, t := range topTabs {
			if t == path.Top {
				p.topIdx = i
			}
		}
		for i, s := range p.subs() {
			if s == path.Sub {
				p.subIdx = i
			}
		}
		for i, d := range p.details() {
			if d == path.Detail {
				p.detailIdx = i
			}
		}
		for i, opt := range classify.PurchaseOptions {
			if opt.Key == path.PurchaseOption {
				p.optionIdx = i
			}
		}
	}
	m.picker = p
	m.mode = modeClassify
	m.status = "CLASSIFY: h/l choose, enter next, esc back"
}

func (m *Model) beginClassify(ev *event.Event) {
	m.beginPicker(ev.Clone(), false)
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := &m.picker

	if p.stage == stageProject || p.stage == stageEquip {
		return m.updatePickerInput(msg)
	}

	switch msg.String() {
	case "esc":
		if p.stage == stageTop {
			m.closePicker("classification cancelled")
			return nil
		}
		p.stage--
		if p.stage == stageOption && !p.isPurchase() {
			p.stage--
		}
	case "h", "left":
		p.step(-1)
	case "l", "right", "tab":
		p.step(1)
	case "enter":
		return m.advancePicker()
	}
	return nil
}

func (p *picker) step(dir int) {
	move := func(idx, n int) int {
		if n == 0 {
			return 0
		}
		idx += dir
		if idx < 0 {
			idx = n - 1
		}
		if idx >= n {
			idx = 0
		}
		return idx
	}
	switch p.stage {
	case stageTop:
		// Switching the top tab resets the deeper selections: the other
		// branch has a different tree.
		p.topIdx = move(p.topIdx, len(topTabs))
		p.subIdx, p.detailIdx, p.optionIdx = 0, 0, 0
	case stageSub:
		p.subIdx = move(p.subIdx, len(p.subs()))
		p.detailIdx, p.optionIdx = 0, 0
	case stageDetail:
		p.detailIdx = move(p.detailIdx, len(p.details()))
	case stageOption:
		p.optionIdx = move(p.optionIdx, len(classify.PurchaseOptions))
	}
}

func (m *Model) advancePicker() tea.Cmd {
	p := &m.picker
	switch p.stage {
	case stageTop:
		p.stage = stageSub
	case stageSub:
		p.stage = stageDetail
	case stageDetail:
		if p.isPurchase() {
			p.stage = stageOption
			return nil
		}
		if p.top() == classify.TopProject {
			return m.enterProjectStage()
		}
		return m.commitPicker("", "")
	case stageOption:
		return m.enterProjectStage()
	}
	return nil
}

func (m *Model) enterProjectStage() tea.Cmd {
	m.picker.stage = stageProject
	m.input.Placeholder = "Project code"
	m.input.SetValue(m.picker.target.ProjectCode)
	m.input.CursorEnd()
	m.input.Focus()
	m.status = "project code (up/down cycles known projects)"
	return nil
}

func (m *Model) updatePickerInput(msg tea.KeyMsg) tea.Cmd {
	p := &m.picker
	switch msg.String() {
	case "esc":
		m.input.Reset()
		m.input.Blur()
		if p.stage == stageEquip {
			p.stage = stageProject
			return m.enterProjectStage()
		}
		p.stage = stageDetail
		return nil
	case "up", "down":
		if p.stage == stageProject && len(m.projects) > 0 {
			m.cycleProjectInput(msg.String() == "down")
		}
		return nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.input.Blur()
		if p.stage == stageProject {
			p.target.ProjectCode = value
			p.stage = stageEquip
			m.input.Placeholder = "Equipment (number name, blank to skip)"
			m.input.SetValue(equipValue(p.target))
			m.input.CursorEnd()
			m.input.Focus()
			return nil
		}
		number, name := splitEquip(value)
		return m.commitPicker(number, name)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
}

func (m *Model) cycleProjectInput(forward bool) {
	cur := strings.TrimSpace(m.input.Value())
	idx := -1
	for i, p := range m.projects {
		if p.Code == cur {
			idx = i
			break
		}
	}
	if forward {
		idx++
	} else {
		idx--
	}
	if idx < 0 {
		idx = len(m.projects) - 1
	}
	if idx >= len(m.projects) {
		idx = 0
	}
	m.input.SetValue(m.projects[idx].Code)
	m.input.CursorEnd()
}

func (m *Model) commitPicker(equipNumber, equipName string) tea.Cmd {
	p := &m.picker
	subs := p.subs()
	details := p.details()
	if p.subIdx >= len(subs) || p.detailIdx >= len(details) {
		m.closePicker("classification cancelled")
		return nil
	}

	path := classify.Path{Top: p.top(), Sub: subs[p.subIdx], Detail: details[p.detailIdx]}
	if p.isPurchase() {
		path.PurchaseOption = classify.PurchaseOptions[p.optionIdx].Key
	}
	class, err := event.FromPath(path)
	if err != nil {
		m.status = "ERR: " + err.Error()
		return nil
	}

	target := p.target
	target.SetClass(class)
	if pc, ok := target.Class.(event.ProjectClass); ok {
		pc.Equipment = event.EquipmentRef{Number: equipNumber, Name: equipName}
		target.Class = pc.Normalize()
	}
	target.Dirty = true

	code := target.ActivityCode()
	verb := "classified"
	if p.creating {
		verb = "created"
	}
	m.closePicker(fmt.Sprintf("%s %s", verb, code))
	m.selected = target.ID
	return m.upsert(target, m.status)
}

func (m *Model) closePicker(status string) {
	m.picker = picker{}
	m.mode = modeNormal
	m.input.Reset()
	m.input.Blur()
	m.status = status
}

func equipValue(ev *event.Event) string {
	pc, ok := ev.Class.(event.ProjectClass)
	if !ok {
		return ""
	}
	return strings.TrimSpace(pc.Equipment.Number + " " + pc.Equipment.Name)
}

func splitEquip(s string) (number, name string) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}
	number = parts[0]
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	return number, name
}

// view renders the picker overlay body.
func (p *picker) view(t theme.Theme) string {
	var b strings.Builder

	when := fmt.Sprintf("%s %s-%s", p.target.Start.Format("Mon 01/02"),
		p.target.Start.Format("15:04"), p.target.End.Format("15:04"))
	b.WriteString(t.Title.Render("Classify " + when))
	b.WriteString("\n\n")

	b.WriteString(renderTabs("  ", topLabels(), p.topIdx, p.stage == stageTop))
	b.WriteString("\n")
	b.WriteString(renderTabs("  ", p.subs(), p.subIdx, p.stage == stageSub))
	b.WriteString("\n")
	b.WriteString(renderTabs("  ", p.details(), p.detailIdx, p.stage == stageDetail))
	b.WriteString("\n")
	if p.isPurchase() {
		opts := make([]string, len(classify.PurchaseOptions))
		for i, o := range classify.PurchaseOptions {
			opts[i] = fmt.Sprintf("%c:%s", o.Key, o.Label)
		}
		b.WriteString(renderTabs("  ", opts, p.optionIdx, p.stage == stageOption))
		b.WriteString("\n")
	}

	if code := previewCode(p); code != "" {
		b.WriteString("\n")
		b.WriteString(t.Footer.Status.Render("code: " + code))
	}
	return b.String()
}

func topLabels() []string {
	labels := make([]string, len(topTabs))
	for i, t := range topTabs {
		labels[i] = string(t)
	}
	return labels
}

func renderTabs(indent string, labels []string, idx int, active bool) string {
	var b strings.Builder
	b.WriteString(indent)
	for i, label := range labels {
		if i == idx {
			if active {
				b.WriteString("→[" + label + "]")
			} else {
				b.WriteString("[" + label + "]")
			}
		} else {
			b.WriteString(" " + label + " ")
		}
		b.WriteString(" ")
	}
	return b.String()
}

func previewCode(p *picker) string {
	subs := p.subs()
	details := p.details()
	if p.subIdx >= len(subs) || p.detailIdx >= len(details) {
		return ""
	}
	path := classify.Path{Top: p.top(), Sub: subs[p.subIdx], Detail: details[p.detailIdx]}
	if p.isPurchase() {
		path.PurchaseOption = classify.PurchaseOptions[p.optionIdx].Key
	}
	code, err := classify.Derive(path)
	if err != nil {
		return ""
	}
	return code
}
