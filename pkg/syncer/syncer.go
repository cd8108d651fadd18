// Package syncer moves weeks between the remote service and the local
// cache. Loads prefer the server and fall back to cached state when the
// server is unreachable; saves push the whole week and clear the dirty
// flag only on full success. Per-week locks keep a load and a save for the
// same week from interleaving.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/shiwake/pkg/cache"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/timegrid"
	"tableflip.dev/shiwake/pkg/worktime"
)

// Remote is the slice of the HTTP client the syncer needs.
type Remote interface {
	WeekAchievements(ctx context.Context, key store.WeekKey) ([]*event.Event, error)
	SaveWeekAchievements(ctx context.Context, key store.WeekKey, evs []*event.Event) error
	DeleteAchievement(ctx context.Context, id string) error
	WeekKintai(ctx context.Context, key store.WeekKey) ([]worktime.WorkTime, error)
	SaveWeekKintai(ctx context.Context, key store.WeekKey, wts []worktime.WorkTime) error
}

// Syncer orchestrates week loads and saves against one remote.
type Syncer struct {
	remote   Remote
	cache    *cache.Cache
	defaults worktime.Defaults

	mu    sync.Mutex
	locks map[store.WeekKey]*sync.Mutex
}

// New builds a syncer. defaults seeds work times for weeks neither the
// server nor the cache has seen; nil means the standard table.
func New(remote Remote, c *cache.Cache, defaults worktime.Defaults) *Syncer {
	if defaults == nil {
		defaults = worktime.StandardDefaults
	}
	return &Syncer{
		remote:   remote,
		cache:    c,
		defaults: defaults,
		locks:    make(map[store.WeekKey]*sync.Mutex),
	}
}

// LoadWeek brings one week into the cache and returns its snapshot.
//
// When the server answers, its copy wins: the cache is overwritten and the
// week comes back clean. When the server is unreachable, cached state is
// served as-is with stale=true and the fetch error attached; a week with
// no cached state either is seeded from the work-time defaults, still
// clean. Unsaved local edits are lost on a successful load, so callers
// must confirm before loading over a dirty week.
func (s *Syncer) LoadWeek(ctx context.Context, key store.WeekKey) (snap cache.Snapshot, stale bool, err error) {
	unlock := s.lockWeek(key)
	defer unlock()

	evs, evErr := s.remote.WeekAchievements(ctx, key)
	wts, wtErr := s.remote.WeekKintai(ctx, key)
	if evErr == nil && wtErr == nil {
		if len(wts) == 0 {
			wts = s.defaults.Materialize(timegrid.WeekStart(key.Year, key.Week))
		}
		if err := s.cache.Replace(key, evs, wts, false); err != nil {
			return cache.Snapshot{Key: key}, false, err
		}
		snap, err := s.cache.Week(key)
		return snap, false, err
	}

	fetchErr := errors.Join(evErr, wtErr)
	snap, cacheErr := s.cache.Week(key)
	if cacheErr != nil {
		return cache.Snapshot{Key: key}, true, errors.Join(fetchErr, cacheErr)
	}
	if snap.Cached {
		return snap, true, fetchErr
	}

	// Nothing anywhere: seed defaults so the editor has a week to show.
	wts = s.defaults.Materialize(timegrid.WeekStart(key.Year, key.Week))
	if err := s.cache.Replace(key, nil, wts, false); err != nil {
		return cache.Snapshot{Key: key}, true, errors.Join(fetchErr, err)
	}
	snap, cacheErr = s.cache.Week(key)
	return snap, true, errors.Join(fetchErr, cacheErr)
}

// SaveWeek pushes one week to the server: events first, then work times.
// Both are attempted even if the first fails, and the dirty flag clears
// only when both succeed. There is no rollback; a half-saved week stays
// dirty and the next save retries both documents.
func (s *Syncer) SaveWeek(ctx context.Context, key store.WeekKey) error {
	unlock := s.lockWeek(key)
	defer unlock()

	snap, err := s.cache.Week(key)
	if err != nil {
		return err
	}
	if !snap.Cached {
		return nil
	}

	// Targeted deletes go out first so the server drops rows even if the
	// week post below fails. The post replaces the full list, so a failed
	// or already-gone delete is not fatal.
	for _, id := range s.cache.Removed(key) {
		_ = s.remote.DeleteAchievement(ctx, id)
	}

	evErr := s.remote.SaveWeekAchievements(ctx, key, snap.Events)
	wtErr := s.remote.SaveWeekKintai(ctx, key, snap.WorkTimes)
	if err := errors.Join(evErr, wtErr); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.cache.MarkClean(key)
}

// SaveAll pushes every dirty week, continuing past failures and joining
// the errors.
func (s *Syncer) SaveAll(ctx context.Context) error {
	weeks, err := s.cache.DirtyWeeks()
	if err != nil {
		return err
	}
	var errs []error
	for _, key := range weeks {
		if err := s.SaveWeek(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) lockWeek(key store.WeekKey) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
