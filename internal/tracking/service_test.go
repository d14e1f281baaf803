package tracking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, data})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// brokenStore fails every call.
type brokenStore struct{}

var errUnavailable = errors.New("database is locked")

func (brokenStore) Add(context.Context, Entry) (string, error) {
	return "", errUnavailable
}

func (brokenStore) List(context.Context) ([]Entry, error) {
	return nil, errUnavailable
}

func (brokenStore) Search(context.Context, string) ([]Entry, error) {
	return nil, errUnavailable
}

func (brokenStore) Get(context.Context, string) (Entry, error) {
	return Entry{}, errUnavailable
}

func (brokenStore) Close() error {
	return nil
}

func newService(t *testing.T, store Store, cfg ServiceConfig) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := NewService(store, secrets.MustNew(nil), pub, nil, cfg)
	require.NoError(t, err)
	return svc, pub
}

func TestNewService_RequiresStore(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, ServiceConfig{})
	assert.Error(t, err)
}

func TestService_CreateAndGet(t *testing.T) {
	svc, pub := newService(t, NewMemoryStore(), ServiceConfig{})
	ctx := context.Background()

	id, err := svc.Create(ctx, Entry{
		Date:           day(2024, 3, 15),
		PestName:       "  Aphids ",
		Location:       "Vegetable Garden",
		AffectedPlants: "Tomatoes",
		TreatmentPlan:  "Neem oil spray applied",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Aphids", got.PestName)
	assert.Equal(t, "Neem oil spray applied", got.TreatmentPlan)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "tracking.created", pub.events[0].eventType)
	ev, ok := pub.events[0].data.(CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, "Aphids", ev.PestName)
	assert.Equal(t, "Vegetable Garden", ev.Location)
}

func TestService_CreateRequiresPestName(t *testing.T) {
	svc, pub := newService(t, NewMemoryStore(), ServiceConfig{})

	_, err := svc.Create(context.Background(), Entry{PestName: "   ", Location: "Orchard"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Empty(t, pub.events)
}

func TestService_CreateDefaultsDate(t *testing.T) {
	svc, _ := newService(t, NewMemoryStore(), ServiceConfig{})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	id, err := svc.Create(context.Background(), Entry{PestName: "Slugs"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(got.Date))
}

func TestService_CreateScrubsFreeText(t *testing.T) {
	svc, _ := newService(t, NewMemoryStore(), ServiceConfig{})
	key := "AIza" + strings.Repeat("Q", 35)

	id, err := svc.Create(context.Background(), Entry{
		PestName:      "Whiteflies",
		TreatmentPlan: "Yellow sticky traps",
		Notes:         "weather station key " + key,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.NotContains(t, got.Notes, key)
	assert.Contains(t, got.Notes, "[REDACTED]")
	assert.Equal(t, "Yellow sticky traps", got.TreatmentPlan)
}

func TestService_PublishFailureDoesNotFailCreate(t *testing.T) {
	svc, pub := newService(t, NewMemoryStore(), ServiceConfig{})
	pub.err = errors.New("nats: connection closed")

	id, err := svc.Create(context.Background(), Entry{PestName: "Thrips"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestService_SearchEmptyTermLists(t *testing.T) {
	svc, _ := newService(t, NewMemoryStore(), ServiceConfig{})
	ctx := context.Background()
	for _, name := range []string{"Aphids", "Slugs"} {
		_, err := svc.Create(ctx, Entry{PestName: name})
		require.NoError(t, err)
	}

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := svc.Search(ctx, "Sl")
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Slugs", some[0].PestName)
}

func TestService_StoreFailureWithoutFallback(t *testing.T) {
	svc, pub := newService(t, brokenStore{}, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.Create(ctx, Entry{PestName: "Aphids"})
	assert.ErrorIs(t, err, errUnavailable)
	assert.Empty(t, pub.events)

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, errUnavailable)

	_, err = svc.Search(ctx, "Aph")
	assert.ErrorIs(t, err, errUnavailable)

	_, err = svc.Get(ctx, "1")
	assert.ErrorIs(t, err, errUnavailable)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestService_StoreFailureWithFallback(t *testing.T) {
	svc, pub := newService(t, brokenStore{}, ServiceConfig{FallbackToSamples: true})
	svc.now = func() time.Time { return time.UnixMilli(1710460800000) }
	ctx := context.Background()

	id, err := svc.Create(ctx, Entry{PestName: "Aphids"})
	require.NoError(t, err)
	assert.Equal(t, "mock-1710460800000", id)
	assert.Empty(t, pub.events, "mock entries are not announced")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, Samples(), list)

	found, err := svc.Search(ctx, "beetle")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Japanese Beetles", found[0].PestName)

	none, err := svc.Search(ctx, "mildew")
	require.NoError(t, err)
	assert.Empty(t, none)

	// Get never falls back.
	_, err = svc.Get(ctx, "1")
	assert.ErrorIs(t, err, errUnavailable)
}

func TestService_GetNotFound(t *testing.T) {
	svc, _ := newService(t, NewMemoryStore(), ServiceConfig{FallbackToSamples: true})
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
