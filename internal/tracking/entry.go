// Package tracking records pest treatment history and answers list and
// prefix-search queries over it.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("tracking entry not found")

	// ErrInvalidEntry is returned when an entry fails validation.
	ErrInvalidEntry = errors.New("invalid tracking entry")
)

// searchUpperBound is appended to a search term to form the inclusive upper
// bound of a prefix range.
const searchUpperBound = "\uf8ff"

// timeLayout is RFC 3339 with fixed nanosecond width so that stored strings
// sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one treatment record.
type Entry struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	PestName       string    `json:"pestName"`
	Location       string    `json:"location"`
	AffectedPlants string    `json:"affectedPlants"`
	TreatmentPlan  string    `json:"treatmentPlan"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store persists tracking entries.
type Store interface {
	// Add stamps CreatedAt, assigns an ID and persists e.
	Add(ctx context.Context, e Entry) (string, error)

	// List returns all entries, newest CreatedAt first.
	List(ctx context.Context) ([]Entry, error)

	// Search returns entries whose PestName lies in [term, term+"\uf8ff"],
	// ordered by PestName ascending then Date descending. An empty term
	// behaves like List.
	Search(ctx context.Context, term string) ([]Entry, error)

	// Get returns one entry or ErrNotFound.
	Get(ctx context.Context, id string) (Entry, error)

	Close() error
}

// Driver names accepted by OpenStore.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// OpenStore opens the store for driver. path is ignored by the memory driver.
func OpenStore(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
