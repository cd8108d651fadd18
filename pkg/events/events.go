// Package events defines the typed Bubble Tea messages exchanged between
// the cache, the sync orchestrator, and the UI. Cross-component signaling
// always travels through these messages so the call graph stays traceable;
// nothing broadcasts ambiently.
package events

import (
	"fmt"
	"time"

	"tableflip.dev/shiwake/pkg/store"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// ChangeType enumerates supported change actions across components.
type ChangeType string

const (
	// ChangeCreate indicates a new resource was created.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing resource changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates a resource was removed.
	ChangeDelete ChangeType = "delete"
)

// EventRef carries the identifying fields of a time-block in messages.
type EventRef struct {
	ID           string
	Title        string
	ActivityCode string
	Start        time.Time
	End          time.Time
}

// EventChangeMsg announces a mutation of the event list for a week,
// regardless of origin (drag, resize, edit, sync).
type EventChangeMsg struct {
	Component ComponentID
	Action    ChangeType
	Week      store.WeekKey
	Event     EventRef
}

// Describe renders the change in a human-friendly format for logs.
func (m EventChangeMsg) Describe() string {
	return fmt.Sprintf(`action:%q week:%q event:%q code:%q`, m.Action, m.Week, m.Event.Title, m.Event.ActivityCode)
}

// WorkTimeChangeMsg announces a mutation of a day's clock-in/out record.
type WorkTimeChangeMsg struct {
	Component ComponentID
	Week      store.WeekKey
	Date      time.Time
}

func (m WorkTimeChangeMsg) Describe() string {
	return fmt.Sprintf(`week:%q date:%q`, m.Week, m.Date.Format("2006-01-02"))
}

// WeekDirtyMsg fires whenever a week's dirty flag changes.
type WeekDirtyMsg struct {
	Component ComponentID
	Week      store.WeekKey
	Dirty     bool
}

func (m WeekDirtyMsg) Describe() string {
	return fmt.Sprintf(`week:%q dirty:%v`, m.Week, m.Dirty)
}

// WeekLoadedMsg reports the outcome of a load: fresh from the remote, or
// stale from the cache after a remote failure.
type WeekLoadedMsg struct {
	Component ComponentID
	Week      store.WeekKey
	Stale     bool
	Err       error
}

func (m WeekLoadedMsg) Describe() string {
	state := "fresh"
	if m.Stale {
		state = "stale"
	}
	return fmt.Sprintf(`week:%q state:%q err:%v`, m.Week, state, m.Err)
}

// SaveResultMsg reports the outcome of a save attempt.
type SaveResultMsg struct {
	Component ComponentID
	Week      store.WeekKey
	Err       error
}

func (m SaveResultMsg) Describe() string {
	return fmt.Sprintf(`week:%q err:%v`, m.Week, m.Err)
}

// ExternalChangeMsg signals that another process wrote this week's cache.
type ExternalChangeMsg struct {
	Component ComponentID
	Week      store.WeekKey
}

func (m ExternalChangeMsg) Describe() string {
	return fmt.Sprintf(`week:%q`, m.Week)
}
