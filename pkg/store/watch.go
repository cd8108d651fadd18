package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch streams change events until ctx is cancelled. It exists so a
// running editor notices another process (a second terminal, a headless
// pull) touching the same week cache. Callers should drain the returned
// channel to avoid losing events; the channel is closed once ctx is done
// or the watcher fails unrecoverably.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop rather than stall the watcher goroutine during a
				// filesystem storm; a later event or a manual refresh
				// catches the consumer up.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventCacheInvalidated}, send)
				_ = err
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					// A new year or week directory appeared. Files may
					// already have landed inside it before the watch is
					// in place, so watch the whole subtree and announce
					// the change instead of waiting for a write event
					// that will never come.
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						subDirs, err := collectDirs(filepath.Clean(evt.Name))
						if err != nil {
							subDirs = []string{filepath.Clean(evt.Name)}
						}
						announced := false
						for _, dir := range subDirs {
							if _, found := watched[dir]; !found {
								if err := watcher.Add(dir); err != nil {
									fmt.Fprintf(os.Stderr, "store: watch %s: %v\n", dir, err)
									continue
								}
								watched[dir] = struct{}{}
							}
							if week, ok := p.weekForPath(dir); ok {
								throttle.Enqueue(Event{Type: EventWeekChanged, Week: week}, send)
								announced = true
							}
						}
						if !announced {
							throttle.Enqueue(Event{Type: EventCacheInvalidated}, send)
						}
						continue
					}
				}

				week, ok := p.weekForPath(evt.Name)
				if !ok {
					throttle.Enqueue(Event{Type: EventCacheInvalidated}, send)
					continue
				}

				throttle.Enqueue(Event{Type: EventWeekChanged, Week: week}, send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// weekForPath derives the week bucket from a diskv path (base/year/week/kind).
func (p *persistence) weekForPath(path string) (WeekKey, bool) {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return WeekKey{}, false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) < 2 {
		return WeekKey{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekKey{}, false
	}
	week, err := strconv.Atoi(parts[1])
	if err != nil {
		return WeekKey{}, false
	}
	return WeekKey{Year: year, Week: week}, true
}

// eventThrottle coalesces rapid change notifications so consumers redraw
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[WeekKey]Event
	invalid bool
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		pending: make(map[WeekKey]Event),
		delay:   delay,
	}
}

// Enqueue schedules ev for delivery via send after the quiet period.
// Events for the same week collapse into one.
func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case EventCacheInvalidated:
		t.invalid = true
	default:
		t.pending[ev.Week] = ev
	}

	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		pending := t.pending
		invalid := t.invalid
		t.pending = make(map[WeekKey]Event)
		t.invalid = false
		t.timer = nil
		t.mu.Unlock()

		if invalid {
			send(Event{Type: EventCacheInvalidated})
		}
		for _, ev := range pending {
			send(ev)
		}
	})
}

// Stop discards anything still queued.
func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = make(map[WeekKey]Event)
	t.invalid = false
}
