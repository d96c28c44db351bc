package recordstore

import (
	"context"
	"database/sql"
	"testing"
	"time"
	"tumbledry-backend/lib/recordstore/db"
	"tumbledry-backend/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) Store {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)
	return NewStore(sqlite)
}

func metricFor(month, revenue string) Metric {
	return Metric{
		Month:   month,
		Headers: []string{"Month", "Revenue"},
		Values:  map[string]string{"Month": month, "Revenue": revenue},
	}
}

func TestUpsertIdempotence(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:recordstore")
	defer cleanup()

	store := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	rec := Record{
		StoreCode:  "A001",
		StoreName:  "Kochi Central",
		Status:     StatusActive,
		LaunchDate: "12 Jul 2025",
		City:       "Kochi",
		State:      "Kerala",
		YearlyData: []Metric{metricFor("Jan, 2025", "₹1,20,000")},
	}
	require.NoError(t, store.Upsert(ctx, rec))
	require.NoError(t, store.Upsert(ctx, rec))

	got, ok, err := store.Get(ctx, "A001")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Kochi Central", got.StoreName)
	require.Equal(t, StatusActive, got.Status)
	require.Equal(t, "Kochi", got.City)
	require.Len(t, got.YearlyData, 1)
	require.Equal(t, "₹1,20,000", got.YearlyData[0].Values["Revenue"])
}

func TestMonotonicLocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Record{
		StoreCode: "A002",
		StoreName: "Mumbai Andheri",
		Status:    StatusActive,
		City:      "Mumbai",
		State:     "Maharashtra",
	}
	require.NoError(t, store.Upsert(ctx, first))

	// a later harvest that failed to resolve must not clobber
	second := first
	second.City = Unknown
	second.State = Unknown
	require.NoError(t, store.Upsert(ctx, second))

	got, ok, err := store.Get(ctx, "A002")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Mumbai", got.City)
	require.Equal(t, "Maharashtra", got.State)

	// but a real fresh value does overwrite
	third := first
	third.City = "Thane"
	require.NoError(t, store.Upsert(ctx, third))

	got, _, err = store.Get(ctx, "A002")
	require.NoError(t, err)
	require.Equal(t, "Thane", got.City)
}

func TestUnknownSticksWhenNothingKnown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Record{
		StoreCode: "A003",
		StoreName: "Not found",
		Status:    StatusInactive,
		City:      Unknown,
		State:     Unknown,
	}))

	got, ok, err := store.Get(ctx, "A003")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Unknown, got.City)
	require.Equal(t, Unknown, got.State)
}

func TestMetricMergeKeepsHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Record{
		StoreCode: "A004",
		StoreName: "Pune Camp",
		Status:    StatusActive,
		YearlyData: []Metric{
			metricFor("Jan, 2025", "100"),
			metricFor("Feb, 2025", "200"),
		},
	}))

	// the fresh page only shows february (revised) and march
	require.NoError(t, store.Upsert(ctx, Record{
		StoreCode: "A004",
		StoreName: "Pune Camp",
		Status:    StatusActive,
		YearlyData: []Metric{
			metricFor("Feb, 2025", "250"),
			metricFor("Mar, 2025", "300"),
		},
	}))

	got, _, err := store.Get(ctx, "A004")
	require.NoError(t, err)
	require.Len(t, got.YearlyData, 3)

	byMonth := map[string]string{}
	for _, m := range got.YearlyData {
		byMonth[m.Month] = m.Values["Revenue"]
	}
	require.Equal(t, "100", byMonth["Jan, 2025"])
	require.Equal(t, "250", byMonth["Feb, 2025"])
	require.Equal(t, "300", byMonth["Mar, 2025"])
}

func TestSetLocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Record{
		StoreCode: "A005",
		StoreName: "Somewhere",
		Status:    StatusActive,
		City:      Unknown,
		State:     Unknown,
	}))

	city := "Jaipur"
	ok, err := store.SetLocation(ctx, "A005", &city, nil)
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := store.Get(ctx, "A005")
	require.NoError(t, err)
	require.Equal(t, "Jaipur", got.City)
	require.Equal(t, Unknown, got.State)

	ok, err = store.SetLocation(ctx, "missing", &city, nil)
	require.NoError(t, err)
	require.False(t, ok)
}
