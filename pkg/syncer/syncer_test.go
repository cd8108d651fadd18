package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/classify"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/worktime"
)

var week = store.WeekKey{Year: 2025, Week: 20}

// fakeRemote records saves and serves canned weeks; errors are switchable
// per direction.
type fakeRemote struct {
	events    map[store.WeekKey][]*event.Event
	kintai    map[store.WeekKey][]worktime.WorkTime
	fetchErr  error
	saveEvErr error
	saveWtErr error

	savedEvents [][]*event.Event
	savedKintai [][]worktime.WorkTime
	deletedIDs  []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		events: make(map[store.WeekKey][]*event.Event),
		kintai: make(map[store.WeekKey][]worktime.WorkTime),
	}
}

func (f *fakeRemote) WeekAchievements(_ context.Context, key store.WeekKey) ([]*event.Event, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.events[key], nil
}

func (f *fakeRemote) SaveWeekAchievements(_ context.Context, key store.WeekKey, evs []*event.Event) error {
	if f.saveEvErr != nil {
		return f.saveEvErr
	}
	f.savedEvents = append(f.savedEvents, evs)
	f.events[key] = evs
	return nil
}

func (f *fakeRemote) DeleteAchievement(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeRemote) WeekKintai(_ context.Context, key store.WeekKey) ([]worktime.WorkTime, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.kintai[key], nil
}

func (f *fakeRemote) SaveWeekKintai(_ context.Context, key store.WeekKey, wts []worktime.WorkTime) error {
	if f.saveWtErr != nil {
		return f.saveWtErr
	}
	f.savedKintai = append(f.savedKintai, wts)
	f.kintai[key] = wts
	return nil
}

func meeting(t *testing.T, id string, hour int) *event.Event {
	t.Helper()
	cls, err := event.FromPath(classify.Path{Top: classify.TopIndirect, Sub: "純間接", Detail: "会議"})
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2025, 5, 12, hour, 0, 0, 0, time.Local)
	ev := event.New("E0123", start, start.Add(time.Hour), cls)
	ev.ID = id
	return ev
}

func TestLoadOverwritesCacheAndClearsDirty(t *testing.T) {
	remote := newFakeRemote()
	remote.events[week] = []*event.Event{meeting(t, "server", 9)}
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)

	// Local edit that the server copy will win over.
	if err := c.UpsertEvent(week, meeting(t, "local", 14)); err != nil {
		t.Fatal(err)
	}

	snap, stale, err := s.LoadWeek(context.Background(), week)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stale {
		t.Fatal("successful load must not be stale")
	}
	if len(snap.Events) != 1 || snap.Events[0].ID != "server" {
		t.Fatalf("server copy should win, got %+v", snap.Events)
	}
	if snap.Dirty || c.IsDirty(week) {
		t.Fatal("loaded week must be clean")
	}
}

func TestLoadEmptyWeekSeedsDefaultsClean(t *testing.T) {
	c := cache.New(store.NewMemory(), "test")
	s := New(newFakeRemote(), c, nil)

	snap, stale, err := s.LoadWeek(context.Background(), week)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stale {
		t.Fatal("empty week is not stale")
	}
	if len(snap.WorkTimes) != 7 {
		t.Fatalf("expected 7 seeded work times, got %d", len(snap.WorkTimes))
	}
	if snap.WorkTimes[0].Worked() == 0 {
		t.Fatal("monday should carry the default span")
	}
	if snap.Dirty {
		t.Fatal("seeded defaults are not an edit")
	}
}

func TestLoadFailureFallsBackToCache(t *testing.T) {
	remote := newFakeRemote()
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)
	if err := c.UpsertEvent(week, meeting(t, "local", 14)); err != nil {
		t.Fatal(err)
	}

	remote.fetchErr = errors.New("connection refused")
	snap, stale, err := s.LoadWeek(context.Background(), week)
	if err == nil {
		t.Fatal("expected the fetch error to surface")
	}
	if !stale {
		t.Fatal("cache fallback must be marked stale")
	}
	if len(snap.Events) != 1 || snap.Events[0].ID != "local" {
		t.Fatalf("expected cached events, got %+v", snap.Events)
	}
	if !snap.Dirty {
		t.Fatal("fallback must not clear the dirty flag")
	}
}

func TestLoadFailureNoCacheSeedsDefaults(t *testing.T) {
	remote := newFakeRemote()
	remote.fetchErr = errors.New("connection refused")
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)

	snap, stale, err := s.LoadWeek(context.Background(), week)
	if err == nil {
		t.Fatal("expected the fetch error to surface")
	}
	if !stale {
		t.Fatal("offline seed is stale")
	}
	if len(snap.WorkTimes) != 7 || snap.Dirty {
		t.Fatalf("expected 7 clean seeded work times, got %d dirty=%v", len(snap.WorkTimes), snap.Dirty)
	}
}

func TestSaveWeekClearsDirtyOnSuccess(t *testing.T) {
	remote := newFakeRemote()
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)
	if err := c.UpsertEvent(week, meeting(t, "a", 9)); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveWeek(context.Background(), week); err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.IsDirty(week) {
		t.Fatal("saved week must be clean")
	}
	if len(remote.savedEvents) != 1 || len(remote.savedKintai) != 1 {
		t.Fatalf("expected one save per document, got %d/%d",
			len(remote.savedEvents), len(remote.savedKintai))
	}
}

func TestSaveDeletesRemovedEvents(t *testing.T) {
	remote := newFakeRemote()
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)
	if err := c.UpsertEvent(week, meeting(t, "keep", 9)); err != nil {
		t.Fatal(err)
	}
	if err := c.UpsertEvent(week, meeting(t, "gone", 11)); err != nil {
		t.Fatal(err)
	}
	if err := c.RemoveEvent(week, "gone"); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveWeek(context.Background(), week); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(remote.deletedIDs) != 1 || remote.deletedIDs[0] != "gone" {
		t.Fatalf("expected a targeted delete for %q, got %v", "gone", remote.deletedIDs)
	}
	if len(remote.events[week]) != 1 || remote.events[week][0].ID != "keep" {
		t.Fatalf("expected only the kept event on the server, got %+v", remote.events[week])
	}
	if c.Removed(week) != nil {
		t.Fatal("removal list must reset once the week is clean")
	}
}

func TestSavePartialFailureStaysDirty(t *testing.T) {
	remote := newFakeRemote()
	remote.saveWtErr = errors.New("503")
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)
	if err := c.UpsertEvent(week, meeting(t, "a", 9)); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveWeek(context.Background(), week); err == nil {
		t.Fatal("expected save error")
	}
	if !c.IsDirty(week) {
		t.Fatal("half-saved week must stay dirty")
	}
	if len(remote.savedEvents) != 1 {
		t.Fatal("events should still have been attempted before the kintai failure")
	}
}

func TestSaveAllContinuesPastFailures(t *testing.T) {
	remote := newFakeRemote()
	c := cache.New(store.NewMemory(), "test")
	s := New(remote, c, nil)

	other := store.WeekKey{Year: 2025, Week: 21}
	if err := c.UpsertEvent(week, meeting(t, "a", 9)); err != nil {
		t.Fatal(err)
	}
	if err := c.UpsertEvent(other, meeting(t, "b", 10)); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveAll(context.Background()); err != nil {
		t.Fatalf("save all: %v", err)
	}
	dirty, err := c.DirtyWeeks()
	if err != nil {
		t.Fatal(err)
	}
	if len(dirty) != 0 {
		t.Fatalf("expected no dirty weeks, got %v", dirty)
	}
}
