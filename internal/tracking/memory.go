package tracking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	seq     int64
	now     func() time.Time
}

// memEntry carries an insertion sequence to break CreatedAt ties.
type memEntry struct {
	Entry
	seq int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Add(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Times are held in UTC, as the SQLite store returns them.
	e.ID = uuid.NewString()
	e.Date = e.Date.UTC()
	e.CreatedAt = s.now().UTC()

	s.seq++
	s.entries[e.ID] = memEntry{Entry: e, seq: s.seq}
	return e.ID, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]memEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].seq > all[j].seq
	})
	return unwrap(all), nil
}

func (s *MemoryStore) Search(ctx context.Context, term string) ([]Entry, error) {
	if term == "" {
		return s.List(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	upper := term + searchUpperBound

	s.mu.RLock()
	var matched []memEntry
	for _, e := range s.entries {
		if e.PestName >= term && e.PestName <= upper {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PestName != matched[j].PestName {
			return matched[i].PestName < matched[j].PestName
		}
		return matched[i].Date.After(matched[j].Date)
	})
	return unwrap(matched), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.Entry, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func unwrap(in []memEntry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e.Entry
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
