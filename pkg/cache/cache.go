// Package cache maintains the in-memory week state and writes every
// mutation through the configured WeekRepository. It mirrors the shape of
// an informer cache: state lives locally, mutations emit typed messages on
// a channel, and consumers read consistent snapshots without touching the
// store. The cache never talks to the network; that is the orchestrator's
// job.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/events"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/worktime"
)

// ErrUnknownEvent is returned when a mutation names an event id the week
// does not contain.
var ErrUnknownEvent = errors.New("cache: unknown event id")

// Snapshot exposes one week's cached state. The returned slices are copies
// and should be treated as immutable by callers.
type Snapshot struct {
	Key       store.WeekKey
	Events    []*event.Event
	WorkTimes []worktime.WorkTime
	Dirty     bool
	// Cached is false when the week has never been seen.
	Cached bool
}

type weekState struct {
	events    []*event.Event
	workTimes []worktime.WorkTime
	dirty     bool
	// ids removed since the last clean point, in removal order
	removed []string
}

// Cache is the local store of week buckets plus their dirty flags.
type Cache struct {
	component events.ComponentID

	mu    sync.RWMutex
	repo  store.WeekRepository
	weeks map[store.WeekKey]*weekState

	eventCh chan tea.Msg
}

// New creates a cache over repo that will emit messages using the provided
// ComponentID (falls back to "cache" if empty).
func New(repo store.WeekRepository, component events.ComponentID) *Cache {
	if component == "" {
		component = events.ComponentID("cache")
	}
	return &Cache{
		component: component,
		repo:      repo,
		weeks:     make(map[store.WeekKey]*weekState),
		eventCh:   make(chan tea.Msg, 64),
	}
}

// Events exposes the cache message channel for Bubble Tea subscriptions.
func (c *Cache) Events() <-chan tea.Msg {
	return c.eventCh
}

// Week returns a snapshot of the given week, faulting it in from the
// repository on first access.
func (c *Cache) Week(key store.WeekKey) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, err := c.faultInLocked(key)
	if err != nil {
		return Snapshot{Key: key}, err
	}
	if state == nil {
		return Snapshot{Key: key}, nil
	}
	return c.snapshotLocked(key, state), nil
}

// Replace overwrites a week wholesale and sets its dirty flag. The sync
// orchestrator calls this after a successful remote load (dirty=false) and
// the first-access default seeding (dirty=false); tests use it to arrange
// state.
func (c *Cache) Replace(key store.WeekKey, evs []*event.Event, wts []worktime.WorkTime, dirty bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := &weekState{events: cloneEvents(evs), workTimes: cloneWorkTimes(wts), dirty: dirty}
	if err := c.persistLocked(key, state); err != nil {
		return err
	}
	c.weeks[key] = state
	c.emit(events.WeekDirtyMsg{Component: c.component, Week: key, Dirty: dirty})
	return nil
}

// UpsertEvent inserts or replaces one event and marks the week dirty. The
// store write and the dirty flag move together; no caller can observe one
// without the other.
func (c *Cache) UpsertEvent(key store.WeekKey, ev *event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, err := c.faultInLocked(key)
	if err != nil {
		return err
	}
	if state == nil {
		state = &weekState{}
		c.weeks[key] = state
	}

	action := events.ChangeCreate
	replaced := false
	for i, existing := range state.events {
		if existing.ID == ev.ID {
			state.events[i] = ev.Clone()
			action = events.ChangeUpdate
			replaced = true
			break
		}
	}
	if !replaced {
		state.events = append(state.events, ev.Clone())
	}

	if err := c.markDirtyLocked(key, state); err != nil {
		return err
	}
	c.emit(events.EventChangeMsg{
		Component: c.component,
		Action:    action,
		Week:      key,
		Event:     eventRef(ev),
	})
	return nil
}

// RemoveEvent deletes one event by id and marks the week dirty.
func (c *Cache) RemoveEvent(key store.WeekKey, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, err := c.faultInLocked(key)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("%w: %s in %s", ErrUnknownEvent, id, key)
	}
	for i, existing := range state.events {
		if existing.ID != id {
			continue
		}
		removed := existing
		state.events = append(state.events[:i], state.events[i+1:]...)
		state.removed = append(state.removed, id)
		if err := c.markDirtyLocked(key, state); err != nil {
			return err
		}
		c.emit(events.EventChangeMsg{
			Component: c.component,
			Action:    events.ChangeDelete,
			Week:      key,
			Event:     eventRef(removed),
		})
		return nil
	}
	return fmt.Errorf("%w: %s in %s", ErrUnknownEvent, id, key)
}

// SetWorkTime replaces the record for the given date and marks the week
// dirty.
func (c *Cache) SetWorkTime(key store.WeekKey, wt worktime.WorkTime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, err := c.faultInLocked(key)
	if err != nil {
		return err
	}
	if state == nil {
		state = &weekState{}
		c.weeks[key] = state
	}

	replaced := false
	for i, existing := range state.workTimes {
		if sameDay(existing.Date, wt.Date) {
			state.workTimes[i] = wt
			replaced = true
			break
		}
	}
	if !replaced {
		state.workTimes = append(state.workTimes, wt)
	}

	if err := c.markDirtyLocked(key, state); err != nil {
		return err
	}
	c.emit(events.WorkTimeChangeMsg{Component: c.component, Week: key, Date: wt.Date})
	return nil
}

// MarkClean clears the dirty flag after a successful save.
func (c *Cache) MarkClean(key store.WeekKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.weeks[key]
	if state == nil {
		return nil
	}
	state.dirty = false
	state.removed = nil
	if err := c.repo.SetDirty(key, false); err != nil {
		return err
	}
	c.emit(events.WeekDirtyMsg{Component: c.component, Week: key, Dirty: false})
	return nil
}

// Removed lists the ids deleted from the week since its last clean point.
// The list does not survive a restart; a full-week save supersedes it.
func (c *Cache) Removed(key store.WeekKey) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state := c.weeks[key]
	if state == nil || len(state.removed) == 0 {
		return nil
	}
	out := make([]string, len(state.removed))
	copy(out, state.removed)
	return out
}

// IsDirty reports the week's dirty flag, without faulting anything in.
func (c *Cache) IsDirty(key store.WeekKey) bool {
	c.mu.RLock()
	if state, ok := c.weeks[key]; ok {
		dirty := state.dirty
		c.mu.RUnlock()
		return dirty
	}
	c.mu.RUnlock()
	dirty, err := c.repo.IsDirty(key)
	if err != nil {
		return false
	}
	return dirty
}

// DirtyWeeks lists every week with unsaved changes, cached or not.
func (c *Cache) DirtyWeeks() ([]store.WeekKey, error) {
	return c.repo.DirtyWeeks()
}

// Invalidate drops a week from memory only, so the next read faults it
// back in from the repository. Used when the repository reports a write by
// another process.
func (c *Cache) Invalidate(key store.WeekKey) {
	c.mu.Lock()
	delete(c.weeks, key)
	c.mu.Unlock()
}

// Discard drops a week from memory and the repository. Explicit
// "discard and reload" is the only path that deletes cached state.
func (c *Cache) Discard(key store.WeekKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.weeks, key)
	if err := c.repo.Clear(key); err != nil {
		return err
	}
	c.emit(events.WeekDirtyMsg{Component: c.component, Week: key, Dirty: false})
	return nil
}

func (c *Cache) faultInLocked(key store.WeekKey) (*weekState, error) {
	if state, ok := c.weeks[key]; ok {
		return state, nil
	}
	cached, err := c.repo.Load(key)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, nil
	}
	state := &weekState{events: cached.Events, workTimes: cached.WorkTimes, dirty: cached.Dirty}
	c.weeks[key] = state
	return state, nil
}

func (c *Cache) snapshotLocked(key store.WeekKey, state *weekState) Snapshot {
	return Snapshot{
		Key:       key,
		Events:    cloneEvents(state.events),
		WorkTimes: cloneWorkTimes(state.workTimes),
		Dirty:     state.dirty,
		Cached:    true,
	}
}

// markDirtyLocked raises the dirty flag and persists the week, so the
// repository write carries the raised flag and a restart still sees the
// week as dirty. The transition is emitted at most once, after the
// persist succeeds.
func (c *Cache) markDirtyLocked(key store.WeekKey, state *weekState) error {
	wasDirty := state.dirty
	state.dirty = true
	if err := c.persistLocked(key, state); err != nil {
		state.dirty = wasDirty
		return err
	}
	if !wasDirty {
		c.emit(events.WeekDirtyMsg{Component: c.component, Week: key, Dirty: true})
	}
	return nil
}

func (c *Cache) persistLocked(key store.WeekKey, state *weekState) error {
	if err := c.repo.Store(key, state.events, state.workTimes); err != nil {
		return err
	}
	return c.repo.SetDirty(key, state.dirty)
}

func (c *Cache) emit(msg tea.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}

func eventRef(ev *event.Event) events.EventRef {
	return events.EventRef{
		ID:           ev.ID,
		Title:        ev.Title,
		ActivityCode: ev.ActivityCode(),
		Start:        ev.Start,
		End:          ev.End,
	}
}

func cloneEvents(evs []*event.Event) []*event.Event {
	if len(evs) == 0 {
		return nil
	}
	out := make([]*event.Event, len(evs))
	for i, ev := range evs {
		out[i] = ev.Clone()
	}
	return out
}

func cloneWorkTimes(wts []worktime.WorkTime) []worktime.WorkTime {
	if len(wts) == 0 {
		return nil
	}
	out := make([]worktime.WorkTime, len(wts))
	copy(out, wts)
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
