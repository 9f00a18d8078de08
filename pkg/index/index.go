package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/tolist/pkg/config"
)

const indexFile = "calendars.json"

// DefaultMaxAge is how long a verified calendar ID is trusted without
// asking the API again.
const DefaultMaxAge = 7 * 24 * time.Hour

// Entry is one cached calendar.
type Entry struct {
	ID         string    `json:"id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// CalendarIndex caches calendar name → calendar ID lookups together with
// the time each ID was last confirmed to exist.
type CalendarIndex struct {
	Calendars map[string]Entry `json:"calendars"`
	MaxAge    time.Duration    `json:"-"`

	path    string
	changed bool
}

// NewCalendarIndex opens the index under the config directory.
func NewCalendarIndex() (*CalendarIndex, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, indexFile))
}

// Open reads the index at path. A missing file yields an empty index.
func Open(path string) (*CalendarIndex, error) {
	idx := &CalendarIndex{
		Calendars: make(map[string]Entry),
		MaxAge:    DefaultMaxAge,
		path:      path,
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, idx); err != nil {
		return nil, fmt.Errorf("failed to decode calendar index %s: %w", path, err)
	}
	if idx.Calendars == nil {
		idx.Calendars = make(map[string]Entry)
	}
	return idx, nil
}

// Lookup returns the cached ID for name. fresh is false when the entry
// is older than MaxAge and should be verified before use.
func (idx *CalendarIndex) Lookup(name string, now time.Time) (id string, fresh bool) {
	entry, ok := idx.Calendars[name]
	if !ok {
		return "", false
	}
	return entry.ID, now.Sub(entry.VerifiedAt) < idx.MaxAge
}

// Verified records that id was confirmed to be the calendar called name at now.
func (idx *CalendarIndex) Verified(name, id string, now time.Time) {
	idx.Calendars[name] = Entry{ID: id, VerifiedAt: now}
	idx.changed = true
}

// Forget drops the entry for name.
func (idx *CalendarIndex) Forget(name string) {
	if _, ok := idx.Calendars[name]; ok {
		delete(idx.Calendars, name)
		idx.changed = true
	}
}

// Save writes the index when it changed since it was opened or last saved.
func (idx *CalendarIndex) Save() error {
	if !idx.changed {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0700); err != nil {
		return fmt.Errorf("failed to create calendar index directory: %w", err)
	}
	b, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(idx.path, b, 0600); err != nil {
		return fmt.Errorf("failed to write calendar index %s: %w", idx.path, err)
	}
	idx.changed = false
	return nil
}
