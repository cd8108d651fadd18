package cache

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/shiwake/pkg/classify"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/events"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/worktime"
)

var week = store.WeekKey{Year: 2025, Week: 20}

func newEvent(t *testing.T, id string, hour int) *event.Event {
	t.Helper()
	start := time.Date(2025, 5, 12, hour, 0, 0, 0, time.Local)
	cls, err := event.FromPath(classify.Path{Top: classify.TopIndirect, Sub: "純間接", Detail: "会議"})
	if err != nil {
		t.Fatal(err)
	}
	ev := event.New("E0123", start, start.Add(time.Hour), cls)
	ev.ID = id
	ev.Title = "design review"
	return ev
}

func drain(c *Cache) []tea.Msg {
	var msgs []tea.Msg
	for {
		select {
		case msg := <-c.Events():
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestUpsertMarksDirtyOnce(t *testing.T) {
	c := New(store.NewMemory(), "test")

	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := c.UpsertEvent(week, newEvent(t, "b", 11)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	snap, err := c.Week(week)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if len(snap.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snap.Events))
	}
	if !snap.Dirty {
		t.Fatal("expected week to be dirty")
	}

	var dirtyMsgs, changeMsgs int
	for _, msg := range drain(c) {
		switch msg.(type) {
		case events.WeekDirtyMsg:
			dirtyMsgs++
		case events.EventChangeMsg:
			changeMsgs++
		}
	}
	if dirtyMsgs != 1 {
		t.Fatalf("expected exactly one dirty transition, got %d", dirtyMsgs)
	}
	if changeMsgs != 2 {
		t.Fatalf("expected 2 change messages, got %d", changeMsgs)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	c := New(store.NewMemory(), "test")
	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	moved := newEvent(t, "a", 14)
	if err := c.UpsertEvent(week, moved); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	snap, _ := c.Week(week)
	if len(snap.Events) != 1 {
		t.Fatalf("expected replacement, got %d events", len(snap.Events))
	}
	if snap.Events[0].Start.Hour() != 14 {
		t.Fatalf("expected start at 14:00, got %v", snap.Events[0].Start)
	}
}

func TestRemoveEvent(t *testing.T) {
	c := New(store.NewMemory(), "test")
	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := c.RemoveEvent(week, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.RemoveEvent(week, "a"); err == nil {
		t.Fatal("expected error removing missing event")
	}
	snap, _ := c.Week(week)
	if len(snap.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(snap.Events))
	}
	if got := c.Removed(week); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected removal list [a], got %v", got)
	}
	if err := c.MarkClean(week); err != nil {
		t.Fatalf("mark clean: %v", err)
	}
	if c.Removed(week) != nil {
		t.Fatal("clean week must have an empty removal list")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	c := New(store.NewMemory(), "test")
	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	snap, _ := c.Week(week)
	snap.Events[0].Title = "mutated"

	again, _ := c.Week(week)
	if again.Events[0].Title != "design review" {
		t.Fatalf("cache leaked mutable state: %q", again.Events[0].Title)
	}
}

func TestReplaceCleanThenMutateDirty(t *testing.T) {
	repo := store.NewMemory()
	c := New(repo, "test")

	wts := worktime.StandardDefaults.Materialize(time.Date(2025, 5, 12, 0, 0, 0, 0, time.Local))
	if err := c.Replace(week, []*event.Event{newEvent(t, "a", 9)}, wts, false); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if c.IsDirty(week) {
		t.Fatal("replaced week should be clean")
	}
	if dirty, _ := repo.IsDirty(week); dirty {
		t.Fatal("repository should agree the week is clean")
	}

	wt := wts[0]
	wt.SetEnd(19, 0)
	if err := c.SetWorkTime(week, wt); err != nil {
		t.Fatalf("set work time: %v", err)
	}
	if !c.IsDirty(week) {
		t.Fatal("editing a work time must dirty the week")
	}

	if err := c.MarkClean(week); err != nil {
		t.Fatalf("mark clean: %v", err)
	}
	if c.IsDirty(week) {
		t.Fatal("expected clean after MarkClean")
	}
}

func TestFirstMutationPersistsDirtyFlag(t *testing.T) {
	repo := store.NewMemory()
	c := New(repo, "test")
	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// The repository flag must be raised by the very first mutation, not
	// the second; SaveAll and push find dirty weeks through the repo.
	dirty, err := repo.IsDirty(week)
	if err != nil {
		t.Fatalf("is dirty: %v", err)
	}
	if !dirty {
		t.Fatal("repository dirty flag must be raised with the first mutation")
	}
}

func TestFaultInFromRepository(t *testing.T) {
	repo := store.NewMemory()
	seed := New(repo, "seed")
	if err := seed.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Fresh cache over the same repository sees the persisted week.
	c := New(repo, "test")
	snap, err := c.Week(week)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if !snap.Cached || len(snap.Events) != 1 || !snap.Dirty {
		t.Fatalf("unexpected snapshot: cached=%v events=%d dirty=%v", snap.Cached, len(snap.Events), snap.Dirty)
	}
}

func TestDiscardClearsWeek(t *testing.T) {
	repo := store.NewMemory()
	c := New(repo, "test")
	if err := c.UpsertEvent(week, newEvent(t, "a", 9)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := c.Discard(week); err != nil {
		t.Fatalf("discard: %v", err)
	}
	snap, err := c.Week(week)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if snap.Cached {
		t.Fatal("discarded week should not be cached")
	}
	if cached, _ := repo.Load(week); cached != nil {
		t.Fatal("discarded week should be gone from the repository")
	}
}
