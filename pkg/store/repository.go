package store

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/timegrid"
	"tableflip.dev/shiwake/pkg/worktime"
)

// WeekKey addresses one (ISO year, ISO week) bucket of cached state.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// KeyFor returns the week containing t.
func KeyFor(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Next returns the following week, rolling the year where ISO weeks do.
func (k WeekKey) Next() WeekKey {
	return KeyFor(timegrid.WeekStart(k.Year, k.Week).AddDate(0, 0, 7))
}

// Prev returns the preceding week.
func (k WeekKey) Prev() WeekKey {
	return KeyFor(timegrid.WeekStart(k.Year, k.Week).AddDate(0, 0, -7))
}

// CachedWeek is the persisted shape of one week: the full event list, the
// seven work-time records, and the week's single dirty flag.
type CachedWeek struct {
	Events    []*event.Event      `json:"events"`
	WorkTimes []worktime.WorkTime `json:"workTimes"`
	Dirty     bool                `json:"dirty"`
}

// EventType describes a change notification from the repository.
type EventType int

const (
	// EventWeekChanged indicates the given week's cached data changed on
	// disk, possibly written by another process.
	EventWeekChanged EventType = iota

	// EventCacheInvalidated signals a change that could not be attributed
	// to a single week; consumers should refresh their current view.
	EventCacheInvalidated
)

// Event is emitted by WeekRepository.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Week WeekKey
}

// WeekRepository is the persistence contract for week caches. Load returns
// (nil, nil) for a week that has never been cached.
type WeekRepository interface {
	Load(key WeekKey) (*CachedWeek, error)
	Store(key WeekKey, events []*event.Event, workTimes []worktime.WorkTime) error
	SetDirty(key WeekKey, dirty bool) error
	IsDirty(key WeekKey) (bool, error)
	Clear(key WeekKey) error
	DirtyWeeks() ([]WeekKey, error)
	Watch(ctx context.Context) (<-chan Event, error)
}
