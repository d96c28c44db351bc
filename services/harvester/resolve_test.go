package harvester

import (
	"context"
	"errors"
	"testing"
	"tumbledry-backend/lib/geocode"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/scrapers/tumbledry"
	"tumbledry-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestExtractFromNameLongestPrefix(t *testing.T) {
	city, state, ok := ExtractFromName("New Delhi Store #4")
	require.True(t, ok)
	require.Equal(t, "New Delhi", city)
	require.Equal(t, "Delhi", state)

	city, state, ok = ExtractFromName("Delhi Cantonment 2")
	require.True(t, ok)
	require.Equal(t, "Delhi", city)
	require.Equal(t, "Delhi", state)

	// "Navi Mumbai" must not resolve through the "Mumbai" key
	city, state, ok = ExtractFromName("navi mumbai vashi")
	require.True(t, ok)
	require.Equal(t, "Navi Mumbai", city)
	require.Equal(t, "Maharashtra", state)

	_, _, ok = ExtractFromName("Timbuktu Plaza")
	require.False(t, ok)

	_, _, ok = ExtractFromName("")
	require.False(t, ok)
}

func TestDeriveStatus(t *testing.T) {
	row := tumbledry.PeriodMetric{"Month": "Jan, 2025"}

	cases := []struct {
		name string
		code string
		rows []tumbledry.PeriodMetric
		want recordstore.Status
	}{
		{tumbledry.NotFound, tumbledry.NotFound, nil, recordstore.StatusInactive},
		{tumbledry.NotFound, tumbledry.NotFound, []tumbledry.PeriodMetric{row}, recordstore.StatusClosed},
		{"Store A", "A001", nil, recordstore.StatusActive},
		{"Store A", "A001", []tumbledry.PeriodMetric{row}, recordstore.StatusActive},
		{"", "A001", []tumbledry.PeriodMetric{row}, recordstore.StatusClosed},
		{"Store A", tumbledry.NotFound, nil, recordstore.StatusInactive},
	}

	for _, c := range cases {
		got := deriveStatus(tumbledry.Extraction{
			Identity: tumbledry.Identity{StoreName: c.name, ReportedCode: c.code},
			Rows:     c.rows,
		})
		require.Equal(t, c.want, got, "name=%q code=%q rows=%d", c.name, c.code, len(c.rows))
	}
}

type fakeGeocoder struct {
	results map[string]geocode.Address
	err     error
	queries []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (geocode.Address, bool, error) {
	g.queries = append(g.queries, query)
	if g.err != nil {
		return geocode.Address{}, false, g.err
	}
	addr, ok := g.results[query]
	return addr, ok, nil
}

func TestResolveLocation(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:harvester")
	defer cleanup()
	ctx := context.Background()

	// dictionary hit, geocoder must not be consulted
	geo := &fakeGeocoder{}
	svc := NewService(nil, recordstore.Store{}, geo, Options{})
	city, state := svc.resolveLocation(ctx, "Kochi Marine Drive")
	require.Equal(t, "Kochi", city)
	require.Equal(t, "Kerala", state)
	require.Empty(t, geo.queries)

	// geocoder fallback with digit-stripped retry
	geo = &fakeGeocoder{results: map[string]geocode.Address{
		"Zorapur Outlet": {Town: "Zorapur", State: "Testland"},
	}}
	svc = NewService(nil, recordstore.Store{}, geo, Options{})
	city, state = svc.resolveLocation(ctx, "Zorapur Outlet 12")
	require.Equal(t, "Zorapur", city)
	require.Equal(t, "Testland", state)
	require.Equal(t, []string{"Zorapur Outlet 12", "Zorapur Outlet"}, geo.queries)

	// geocoder errors are swallowed into Unknown
	geo = &fakeGeocoder{err: errors.New("boom")}
	svc = NewService(nil, recordstore.Store{}, geo, Options{})
	city, state = svc.resolveLocation(ctx, "Zorapur Outlet 12")
	require.Equal(t, recordstore.Unknown, city)
	require.Equal(t, recordstore.Unknown, state)

	// nil geocoder degrades the same way
	svc = NewService(nil, recordstore.Store{}, nil, Options{})
	city, state = svc.resolveLocation(ctx, "Zorapur Outlet")
	require.Equal(t, recordstore.Unknown, city)
	require.Equal(t, recordstore.Unknown, state)
}
