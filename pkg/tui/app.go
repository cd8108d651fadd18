// Package tui is the interactive weekly grid: a seven-column time grid with
// mouse-driven move/copy/resize, keyboard editing, and background sync
// against the achievements service.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/editor"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/events"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/syncer"
	"tableflip.dev/shiwake/pkg/timegrid"
	"tableflip.dev/shiwake/pkg/tui/theme"
	"tableflip.dev/shiwake/pkg/worktime"
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeClassify
	modeWorkTime
	modeConfirm
	modeHelp
)

type editField int

const (
	editTitle editField = iota
	editProject
)

// autosaveEvery is the dirty-week autosave interval in ticks (seconds).
const autosaveEvery = 60

// uiComponent tags messages emitted by this model.
const uiComponent = events.ComponentID("ui")

// Model contains the UI state for one editing session.
type Model struct {
	ctx       context.Context
	cache     *cache.Cache
	sync      *syncer.Syncer
	projects  []remote.Project
	theme     theme.Theme
	employee  string
	wtDefault worktime.Defaults

	week store.WeekKey
	snap cache.Snapshot

	mode   mode
	status string
	banner string

	termWidth  int
	termHeight int
	topRow     int

	selected string

	drag    editor.DragController
	resize  editor.ResizeController
	pressed bool
	dragPt  editor.Point
	dragCol int

	// pendingCreate remembers a press on an empty slot until release
	// decides it was a click.
	pendingCreate *time.Time

	input textinput.Model
	field editField

	picker picker

	confirm confirmState

	wtDay int

	ticks int

	cacheCh <-chan tea.Msg
	watchCh <-chan store.Event
}

type confirmState struct {
	prompt string
	yes    func(*Model) tea.Cmd
	no     func(*Model) tea.Cmd
}

// messages internal to the UI; cross-component ones live in pkg/events
type tickMsg time.Time
type cacheMsg struct{ msg tea.Msg }

// New builds the model. watch may be nil when the repository does not
// support change notification.
func New(ctx context.Context, c *cache.Cache, s *syncer.Syncer, employee string,
	projects []remote.Project, defaults worktime.Defaults, watch <-chan store.Event) Model {

	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 120
	ti.Prompt = ""

	if defaults == nil {
		defaults = worktime.StandardDefaults
	}

	return Model{
		ctx:       ctx,
		cache:     c,
		sync:      s,
		projects:  projects,
		theme:     theme.Default(),
		employee:  employee,
		wtDefault: defaults,
		week:      store.KeyFor(time.Now()),
		mode:      modeNormal,
		status:    "NORMAL: mouse drag move, ctrl+drag copy, edge drag resize, tab select, ? help",
		topRow:    7 * rowsPerHour,
		input:     ti,
		cacheCh:   c.Events(),
		watchCh:   watch,
	}
}

// Init starts the first load and the background subscriptions.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadWeek(m.week), m.tick(), m.waitCache()}
	if m.watchCh != nil {
		cmds = append(cmds, m.waitWatch())
	}
	return tea.Batch(cmds...)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitCache() tea.Cmd {
	ch := m.cacheCh
	return func() tea.Msg { return cacheMsg{msg: <-ch} }
}

// waitWatch forwards repository change notifications. A notification with
// no week means the whole cache directory may have changed.
func (m *Model) waitWatch() tea.Cmd {
	ch := m.watchCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return events.ExternalChangeMsg{Component: "store", Week: ev.Week}
	}
}

func (m *Model) loadWeek(key store.WeekKey) tea.Cmd {
	ctx, s := m.ctx, m.sync
	return func() tea.Msg {
		_, stale, err := s.LoadWeek(ctx, key)
		return events.WeekLoadedMsg{Component: uiComponent, Week: key, Stale: stale, Err: err}
	}
}

func (m *Model) saveWeek(key store.WeekKey) tea.Cmd {
	ctx, s := m.ctx, m.sync
	return func() tea.Msg {
		return events.SaveResultMsg{Component: uiComponent, Week: key, Err: s.SaveWeek(ctx, key)}
	}
}

func (m *Model) saveAll() tea.Cmd {
	ctx, s := m.ctx, m.sync
	return func() tea.Msg {
		return events.SaveResultMsg{Component: uiComponent, Err: s.SaveAll(ctx)}
	}
}

// refresh re-reads the current week from the cache.
func (m *Model) refresh() {
	snap, err := m.cache.Week(m.week)
	if err != nil {
		m.status = "ERR: " + err.Error()
		return
	}
	m.snap = snap
	if m.selected != "" && m.eventByID(m.selected) == nil {
		m.selected = ""
	}
}

func (m *Model) eventByID(id string) *event.Event {
	for _, ev := range m.snap.Events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

// sortedEvents returns the week's events in (day, start) order for cursor
// cycling.
func (m *Model) sortedEvents() []*event.Event {
	evs := make([]*event.Event, len(m.snap.Events))
	copy(evs, m.snap.Events)
	sort.Slice(evs, func(i, j int) bool { return evs[i].Start.Before(evs[j].Start) })
	return evs
}

func (m *Model) cycleSelection(step int) {
	evs := m.sortedEvents()
	if len(evs) == 0 {
		m.selected = ""
		return
	}
	idx := -1
	for i, ev := range evs {
		if ev.ID == m.selected {
			idx = i
			break
		}
	}
	idx += step
	if idx < 0 {
		idx = len(evs) - 1
	}
	if idx >= len(evs) {
		idx = 0
	}
	m.selected = evs[idx].ID
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height

	case tickMsg:
		m.ticks++
		cmds = append(cmds, m.tick())
		if m.ticks%autosaveEvery == 0 && m.snap.Dirty {
			m.status = "autosaving " + m.week.String()
			cmds = append(cmds, m.saveWeek(m.week))
		}

	case events.WeekLoadedMsg:
		m.week = msg.Week
		m.refresh()
		if msg.Stale {
			m.banner = "offline: showing cached copy of " + m.week.String()
		} else {
			m.banner = ""
		}
		if msg.Err != nil {
			m.status = "ERR: " + msg.Err.Error()
		} else {
			m.status = m.week.String() + " loaded"
		}

	case events.SaveResultMsg:
		if msg.Err != nil {
			m.status = "ERR: " + msg.Err.Error()
		} else if (msg.Week == store.WeekKey{}) {
			m.status = "all weeks saved"
		} else {
			m.status = msg.Week.String() + " saved"
		}
		m.refresh()

	case cacheMsg:
		m.refresh()
		cmds = append(cmds, m.waitCache())

	case events.ExternalChangeMsg:
		cmds = append(cmds, m.waitWatch())
		if msg.Week != m.week {
			m.banner = "cache changed on disk"
			break
		}
		if m.snap.Dirty {
			m.banner = "cache changed on disk; local edits kept"
		} else {
			m.cache.Invalidate(m.week)
			m.refresh()
			m.banner = "reloaded: cache changed on disk"
		}

	case tea.MouseMsg:
		if m.mode == modeNormal {
			cmds = append(cmds, m.updateMouse(msg))
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.updateKey(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch m.mode {
	case modeHelp:
		switch msg.String() {
		case "q", "esc", "?":
			m.mode = modeNormal
		}
		return nil
	case modeConfirm:
		return m.updateConfirm(msg)
	case modeEdit:
		return m.updateEdit(msg)
	case modeClassify:
		return m.updatePicker(msg)
	case modeWorkTime:
		return m.updateWorkTime(msg)
	}
	return m.updateNormal(msg)
}

func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return m.beginQuit()
	case "?":
		m.mode = modeHelp
	case "j", "down":
		m.scroll(3)
	case "k", "up":
		m.scroll(-3)
	case "g":
		m.topRow = 0
	case "G":
		m.topRow = totalRows - m.gridRows()
		if m.topRow < 0 {
			m.topRow = 0
		}
	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)
	case "h", "left", "[":
		return m.gotoWeek(m.week.Prev())
	case "l", "right", "]":
		return m.gotoWeek(m.week.Next())
	case "t":
		return m.gotoWeek(store.KeyFor(time.Now()))
	case "r":
		if m.snap.Dirty {
			return m.beginConfirm("Discard local edits and reload "+m.week.String()+"? (y/n)",
				func(m *Model) tea.Cmd {
					if err := m.cache.Discard(m.week); err != nil {
						m.status = "ERR: " + err.Error()
						return nil
					}
					return m.loadWeek(m.week)
				}, nil)
		}
		return m.loadWeek(m.week)
	case "s":
		return m.saveWeek(m.week)
	case "S":
		return m.saveAll()
	case "o":
		return m.beginCreate(m.defaultCreateStart())
	case "enter", "i":
		if ev := m.eventByID(m.selected); ev != nil {
			m.beginEdit(ev, editTitle)
		}
	case "p":
		if ev := m.eventByID(m.selected); ev != nil {
			if _, indirect := ev.Class.(event.IndirectClass); indirect {
				m.status = "indirect events carry no project code"
				return nil
			}
			m.beginEdit(ev, editProject)
		}
	case "c":
		if ev := m.eventByID(m.selected); ev != nil {
			m.beginClassify(ev)
		}
	case "x":
		if ev := m.eventByID(m.selected); ev != nil {
			next := ev.Clone()
			next.Status = next.Status.Cycle()
			next.Dirty = true
			return m.upsert(next, "status: "+string(next.Status))
		}
	case "d":
		if ev := m.eventByID(m.selected); ev != nil {
			id := ev.ID
			return m.beginConfirm("Delete "+displayName(ev)+"? (y/n)",
				func(m *Model) tea.Cmd {
					if err := m.cache.RemoveEvent(m.week, id); err != nil {
						m.status = "ERR: " + err.Error()
					} else {
						m.status = "deleted"
					}
					return nil
				}, nil)
		}
	case "w":
		m.mode = modeWorkTime
		m.status = "WORKTIME: h/l day, i edit, x clear, esc back"
	}
	return nil
}

// gotoWeek switches the visible week. A dirty target week is shown from
// cache without a remote load so unsaved edits cannot be overwritten.
func (m *Model) gotoWeek(key store.WeekKey) tea.Cmd {
	m.selected = ""
	if m.cache.IsDirty(key) {
		m.week = key
		m.refresh()
		m.banner = key.String() + " has unsaved changes; not refreshed from server"
		return nil
	}
	return m.loadWeek(key)
}

func (m *Model) beginQuit() tea.Cmd {
	dirty, err := m.cache.DirtyWeeks()
	if err != nil {
		m.status = "ERR: " + err.Error()
		return nil
	}
	if len(dirty) == 0 {
		return tea.Quit
	}
	prompt := fmt.Sprintf("%d week(s) unsaved. Save before quitting? (y/n, esc cancels)", len(dirty))
	return m.beginConfirm(prompt,
		func(m *Model) tea.Cmd {
			ctx, s := m.ctx, m.sync
			return func() tea.Msg {
				// Dirty state survives on disk if this fails; quit anyway.
				_ = s.SaveAll(ctx)
				return tea.Quit()
			}
		},
		func(m *Model) tea.Cmd { return tea.Quit })
}

func (m *Model) beginConfirm(prompt string, yes, no func(*Model) tea.Cmd) tea.Cmd {
	m.mode = modeConfirm
	m.confirm = confirmState{prompt: prompt, yes: yes, no: no}
	return nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		c := m.confirm
		m.mode = modeNormal
		m.confirm = confirmState{}
		if c.yes != nil {
			return c.yes(m)
		}
	case "n", "N":
		c := m.confirm
		m.mode = modeNormal
		m.confirm = confirmState{}
		if c.no != nil {
			return c.no(m)
		}
	case "esc":
		m.mode = modeNormal
		m.confirm = confirmState{}
		m.status = "cancelled"
	}
	return nil
}

func (m *Model) beginEdit(ev *event.Event, field editField) {
	m.mode = modeEdit
	m.field = field
	switch field {
	case editTitle:
		m.input.Placeholder = "Title"
		m.input.SetValue(ev.Title)
	case editProject:
		m.input.Placeholder = "Project code"
		m.input.SetValue(ev.ProjectCode)
	}
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.mode = modeNormal
		m.input.Reset()
		m.input.Blur()
		ev := m.eventByID(m.selected)
		if ev == nil {
			return nil
		}
		next := ev.Clone()
		switch m.field {
		case editTitle:
			next.Title = value
		case editProject:
			next.ProjectCode = value
		}
		next.Dirty = true
		return m.upsert(next, "edited")
	case "esc":
		m.mode = modeNormal
		m.input.Reset()
		m.input.Blur()
		m.status = "edit cancelled"
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	return nil
}

// upsert writes one event through the cache and refreshes the snapshot.
func (m *Model) upsert(ev *event.Event, status string) tea.Cmd {
	if err := m.cache.UpsertEvent(m.week, ev); err != nil {
		m.status = "ERR: " + err.Error()
		return nil
	}
	m.status = status
	m.refresh()
	return nil
}

func (m *Model) defaultCreateStart() time.Time {
	day := timegrid.WeekStart(m.week.Year, m.week.Week)
	if ev := m.eventByID(m.selected); ev != nil {
		day = midnight(ev.Start)
	}
	return day.Add(9 * time.Hour)
}

func displayName(ev *event.Event) string {
	if ev.Title != "" {
		return ev.Title
	}
	if code := ev.ActivityCode(); code != "" {
		return code
	}
	return ev.Start.Format("15:04")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (m *Model) scroll(rows int) {
	m.topRow += rows
	max := totalRows - m.gridRows()
	if max < 0 {
		max = 0
	}
	if m.topRow > max {
		m.topRow = max
	}
	if m.topRow < 0 {
		m.topRow = 0
	}
}

// Run starts the program with mouse tracking enabled.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
