package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/worktime"
)

// One diskv key per (week, payload kind). The transforms bucket a week's
// files under year/week directories: 2025-20-events lands in 2025/20/events.
const (
	kindEvents    = "events"
	kindWorkTimes = "worktimes"
	kindDirty     = "dirty"
)

// Load creates a WeekRepository backed by diskv using the provided config.
func Load(cfg Config) (WeekRepository, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) Load(key WeekKey) (*CachedWeek, error) {
	week := &CachedWeek{}

	data, err := p.d.Read(toKey(key, kindEvents))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s events: %w", key, err)
	}
	if err := json.Unmarshal(data, &week.Events); err != nil {
		return nil, fmt.Errorf("store: decode %s events: %w", key, err)
	}

	if data, err := p.d.Read(toKey(key, kindWorkTimes)); err == nil {
		if err := json.Unmarshal(data, &week.WorkTimes); err != nil {
			return nil, fmt.Errorf("store: decode %s work times: %w", key, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: read %s work times: %w", key, err)
	}

	dirty, err := p.IsDirty(key)
	if err != nil {
		return nil, err
	}
	week.Dirty = dirty
	return week, nil
}

func (p *persistence) Store(key WeekKey, events []*event.Event, workTimes []worktime.WorkTime) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("store: encode %s events: %w", key, err)
	}
	if err := p.d.Write(toKey(key, kindEvents), data); err != nil {
		return fmt.Errorf("store: write %s events: %w", key, err)
	}

	data, err = json.Marshal(workTimes)
	if err != nil {
		return fmt.Errorf("store: encode %s work times: %w", key, err)
	}
	if err := p.d.Write(toKey(key, kindWorkTimes), data); err != nil {
		return fmt.Errorf("store: write %s work times: %w", key, err)
	}
	return nil
}

func (p *persistence) SetDirty(key WeekKey, dirty bool) error {
	val := []byte("false")
	if dirty {
		val = []byte("true")
	}
	if err := p.d.Write(toKey(key, kindDirty), val); err != nil {
		return fmt.Errorf("store: write %s dirty flag: %w", key, err)
	}
	return nil
}

func (p *persistence) IsDirty(key WeekKey) (bool, error) {
	data, err := p.d.Read(toKey(key, kindDirty))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("store: read %s dirty flag: %w", key, err)
	}
	return string(data) == "true", nil
}

func (p *persistence) Clear(key WeekKey) error {
	for _, kind := range []string{kindEvents, kindWorkTimes, kindDirty} {
		if err := p.d.Erase(toKey(key, kind)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("store: erase %s %s: %w", key, kind, err)
		}
	}
	return nil
}

func (p *persistence) DirtyWeeks() ([]WeekKey, error) {
	keys := make([]WeekKey, 0)
	for key := range p.d.Keys(nil) {
		wk, kind, ok := fromKey(key)
		if !ok || kind != kindDirty {
			continue
		}
		data, err := p.d.Read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %s: %s\n", key, err)
			continue
		}
		if string(data) == "true" {
			keys = append(keys, wk)
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

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `year-week-kind`.
func toKey(key WeekKey, kind string) string {
	return fmt.Sprintf("%04d-%02d-%s", key.Year, key.Week, kind)
}

func fromKey(s string) (WeekKey, string, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return WeekKey{}, "", false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekKey{}, "", false
	}
	week, err := strconv.Atoi(parts[1])
	if err != nil {
		return WeekKey{}, "", false
	}
	return WeekKey{Year: year, Week: week}, parts[2], true
}
