package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/worktime"
)

// NewMemory returns an in-process WeekRepository. It round-trips payloads
// through JSON so tests exercise the same encoding as the diskv store.
func NewMemory() WeekRepository {
	return &memory{weeks: make(map[WeekKey][]byte), dirty: make(map[WeekKey]bool)}
}

type memory struct {
	mu    sync.RWMutex
	weeks map[WeekKey][]byte
	dirty map[WeekKey]bool
}

type memoryWeek struct {
	Events    []*event.Event      `json:"events"`
	WorkTimes []worktime.WorkTime `json:"workTimes"`
}

func (m *memory) Load(key WeekKey) (*CachedWeek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.weeks[key]
	if !ok {
		return nil, nil
	}
	var wk memoryWeek
	if err := json.Unmarshal(data, &wk); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return &CachedWeek{Events: wk.Events, WorkTimes: wk.WorkTimes, Dirty: m.dirty[key]}, nil
}

func (m *memory) Store(key WeekKey, events []*event.Event, workTimes []worktime.WorkTime) error {
	data, err := json.Marshal(memoryWeek{Events: events, WorkTimes: workTimes})
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeks[key] = data
	return nil
}

func (m *memory) SetDirty(key WeekKey, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty[key] = dirty
	return nil
}

func (m *memory) IsDirty(key WeekKey) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty[key], nil
}

func (m *memory) Clear(key WeekKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.weeks, key)
	delete(m.dirty, key)
	return nil
}

func (m *memory) DirtyWeeks() ([]WeekKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]WeekKey, 0, len(m.dirty))
	for key, d := range m.dirty {
		if d {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Week < keys[j].Week
	})
	return keys, nil
}

// Watch on the memory store never fires; there is no second process.
func (m *memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
