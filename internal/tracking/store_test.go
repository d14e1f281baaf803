package tracking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns successive instants one second apart.
func fakeClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

type storeFactory struct {
	name string
	open func(t *testing.T, now func() time.Time) Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{"memory", func(t *testing.T, now func() time.Time) Store {
			s := NewMemoryStore()
			s.now = now
			return s
		}},
		{"sqlite", func(t *testing.T, now func() time.Time) Store {
			s, err := OpenSQLite(":memory:")
			require.NoError(t, err)
			s.now = now
			t.Cleanup(func() { s.Close() })
			return s
		}},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestStore_AddAndGetRoundTripsDates(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.open(t, fakeClock(day(2024, 3, 1)))

			nairobi := time.FixedZone("EAT", 3*60*60)
			date := time.Date(2024, 3, 15, 7, 45, 12, 123456789, nairobi)

			id, err := store.Add(ctx, Entry{
				Date:           date,
				PestName:       "Aphids",
				Location:       "Vegetable Garden",
				AffectedPlants: "Tomatoes, Peppers",
				TreatmentPlan:  "Neem oil spray applied",
				Notes:          "Check again in a week",
			})
			require.NoError(t, err)
			require.NotEmpty(t, id)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
			assert.True(t, date.Equal(got.Date), "date %v != %v", got.Date, date)
			assert.Equal(t, time.UTC, got.Date.Location())
			assert.True(t, day(2024, 3, 1).Add(time.Second).Equal(got.CreatedAt))
			assert.Equal(t, "Aphids", got.PestName)
			assert.Equal(t, "Vegetable Garden", got.Location)
			assert.Equal(t, "Tomatoes, Peppers", got.AffectedPlants)
			assert.Equal(t, "Neem oil spray applied", got.TreatmentPlan)
			assert.Equal(t, "Check again in a week", got.Notes)
		})
	}
}

func TestStore_AddIgnoresCallerIDAndCreatedAt(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.open(t, fakeClock(day(2024, 3, 1)))

			id, err := store.Add(ctx, Entry{ID: "chosen", PestName: "Slugs", Date: day(2024, 1, 1), CreatedAt: day(1999, 1, 1)})
			require.NoError(t, err)
			assert.NotEqual(t, "chosen", id)

			got, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 2024, got.CreatedAt.Year())
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.open(t, fakeClock(day(2024, 3, 1)))

			for _, name := range []string{"Aphids", "Whiteflies", "Slugs"} {
				_, err := store.Add(ctx, Entry{PestName: name, Date: day(2024, 1, 1)})
				require.NoError(t, err)
			}

			entries, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "Slugs", entries[0].PestName)
			assert.Equal(t, "Whiteflies", entries[1].PestName)
			assert.Equal(t, "Aphids", entries[2].PestName)
		})
	}
}

func TestStore_ListEmpty(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			entries, err := f.open(t, time.Now).List(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestStore_SearchPrefixRange(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			store := f.open(t, fakeClock(day(2024, 3, 1)))

			seed := []Entry{
				{PestName: "Aphids", Date: day(2024, 3, 15)},
				{PestName: "Japanese Beetles", Date: day(2024, 3, 10)},
				{PestName: "Aphis gossypii", Date: day(2024, 2, 1)},
				{PestName: "Aphids", Date: day(2024, 3, 20)},
				{PestName: "Ants", Date: day(2024, 3, 21)},
			}
			for _, e := range seed {
				_, err := store.Add(ctx, e)
				require.NoError(t, err)
			}

			got, err := store.Search(ctx, "Aph")
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "Aphids", got[0].PestName)
			assert.Equal(t, 20, got[0].Date.Day(), "same name ordered by date desc")
			assert.Equal(t, "Aphids", got[1].PestName)
			assert.Equal(t, 15, got[1].Date.Day())
			assert.Equal(t, "Aphis gossypii", got[2].PestName)

			exact, err := store.Search(ctx, "Japanese Beetles")
			require.NoError(t, err)
			require.Len(t, exact, 1)

			// Prefix range is case-sensitive.
			lower, err := store.Search(ctx, "aph")
			require.NoError(t, err)
			assert.Empty(t, lower)

			none, err := store.Search(ctx, "Zebra")
			require.NoError(t, err)
			assert.Empty(t, none)

			all, err := store.Search(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 5)
			assert.Equal(t, "Ants", all[0].PestName, "empty term lists newest first")
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			_, err := f.open(t, time.Now).Get(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracking.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	id, err := s.Add(ctx, Entry{PestName: "Cutworms", Date: day(2024, 4, 2)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cutworms", got.PestName)
	assert.Equal(t, path, s.Path())
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = OpenStore(DriverSQLite, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = OpenStore("firestore", "")
	assert.Error(t, err)

	_, err = OpenSQLite("")
	assert.Error(t, err)
}
