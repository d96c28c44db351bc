package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/recordstore/db"
	"tumbledry-backend/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestService(t *testing.T) (*Service, recordstore.Store) {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	store := recordstore.NewStore(sqlite)
	return NewService(store), store
}

func seedStores(t *testing.T, store recordstore.Store) {
	ctx := context.Background()
	records := []recordstore.Record{
		{
			StoreCode: "A001", StoreName: "Kochi Central", Status: recordstore.StatusActive,
			LaunchDate: "12 Jul 2024", City: "Kochi", State: "Kerala",
			YearlyData: []recordstore.Metric{
				{Month: "Jan, 2025", Values: map[string]string{
					"Month": "Jan, 2025", "Revenue": "₹1,20,000", "Chemical Billing": "₹8,000",
					"Packaging Billing": "₹4,000", "% Delivered within TAT": "96.5%",
				}},
				{Month: "Feb, 2025", Values: map[string]string{
					"Month": "Feb, 2025", "Revenue": "₹80,000", "Chemical Billing": "₹6,000",
					"Packaging Billing": "₹2,000", "% Delivered within TAT": "93.5%",
				}},
			},
		},
		{
			StoreCode: "A002", StoreName: "Pune Camp", Status: recordstore.StatusActive,
			LaunchDate: "01 Feb 2025", City: "Pune", State: "Maharashtra",
			YearlyData: []recordstore.Metric{
				{Month: "Feb, 2025", Values: map[string]string{
					"Month": "Feb, 2025", "Revenue": "50000", "% Delivered within TAT": "-",
				}},
			},
		},
		{
			StoreCode: "A003", StoreName: "Not found", Status: recordstore.StatusInactive,
			City: recordstore.Unknown, State: recordstore.Unknown,
		},
	}
	for _, rec := range records {
		require.NoError(t, store.Upsert(ctx, rec))
	}
}

func getJSON(t *testing.T, handler http.Handler, url string, out any) int {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code == http.StatusOK || strings.Contains(rr.Header().Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr.Code
}

func TestListStores(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)
	router := svc.Router()

	var resp listResponse
	code := getJSON(t, router, "/api/stores", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Data, 3)

	byCode := map[string]StoreRow{}
	for _, row := range resp.Data {
		byCode[row.StoreCode] = row
	}
	// (96.5 + 93.5) / 2
	require.InDelta(t, 95.0, byCode["A001"].AvgTat, 0.001)
	// the lone "-" placeholder contributes nothing
	require.Zero(t, byCode["A002"].AvgTat)
	require.Equal(t, recordstore.Unknown, byCode["A003"].City)
}

func TestListStoresFilters(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)
	router := svc.Router()

	var resp listResponse
	getJSON(t, router, "/api/stores?search=kochi", &resp)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "A001", resp.Data[0].StoreCode)

	getJSON(t, router, "/api/stores?city=unkn", &resp)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "A003", resp.Data[0].StoreCode)

	getJSON(t, router, "/api/stores?status=inactive", &resp)
	require.Equal(t, 1, resp.Total)

	// "all" disables the status filter entirely
	getJSON(t, router, "/api/stores?status=all", &resp)
	require.Equal(t, 3, resp.Total)

	// status is an exact match, substrings miss
	getJSON(t, router, "/api/stores?status=active", &resp)
	require.Equal(t, 2, resp.Total)
}

func TestListStoresSortAndPaginate(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)
	router := svc.Router()

	var resp listResponse
	getJSON(t, router, "/api/stores?sort_by=avg_tat&order=desc", &resp)
	require.Equal(t, "A001", resp.Data[0].StoreCode)

	getJSON(t, router, "/api/stores?sort_by=store_code&page=2&limit=2", &resp)
	require.Equal(t, 3, resp.Total)
	require.Equal(t, 2, resp.Page)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "A003", resp.Data[0].StoreCode)

	// past the last page: empty data, never an error
	getJSON(t, router, "/api/stores?page=9&limit=10", &resp)
	require.NotNil(t, resp.Data)
	require.Empty(t, resp.Data)
}

func TestStoreStats(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)
	router := svc.Router()

	var stats Stats
	code := getJSON(t, router, "/api/stats/A001", &stats)
	require.Equal(t, http.StatusOK, code)

	require.Equal(t, "Kochi Central", stats.StoreName)
	require.Equal(t, []string{"Jan, 2025", "Feb, 2025"}, stats.Labels)
	require.Equal(t, []float64{120000, 80000}, stats.Revenue)
	require.Equal(t, []float64{96.5, 93.5}, stats.TatPct)

	require.InDelta(t, 200000, stats.KPIs.LifetimeRevenue, 0.001)
	require.InDelta(t, 100000, stats.KPIs.AvgMonthlyRevenue, 0.001)
	// 200000 / (14000 + 6000)
	require.InDelta(t, 10, stats.KPIs.EfficiencyScore, 0.001)
	require.Equal(t, "Jan, 2025", stats.KPIs.HighestRevenueMonth.Month)
	require.InDelta(t, 120000, stats.KPIs.HighestRevenueMonth.Amount, 0.001)
	require.NotEmpty(t, stats.KPIs.StoreAge)
}

func TestStoreStatsNotFound(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)

	var body map[string]string
	code := getJSON(t, svc.Router(), "/api/stats/Z999", &body)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Store not found", body["error"])
}

func TestUpdateLocations(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:analytics")
	defer cleanup()

	svc, store := newTestService(t)
	seedStores(t, store)
	router := svc.Router()

	payload := `{"updates": [
		{"storeCode": "A003", "city": "Jaipur", "state": "Rajasthan"},
		{"storeCode": "Z999", "city": "Nowhere"},
		{"storeCode": "A002"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/update_locations", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp updateLocationsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	// the unknown code and the no-op entry do not count
	require.Equal(t, 1, resp.Updated)

	rec, ok, err := store.Get(context.Background(), "A003")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Jaipur", rec.City)
	require.Equal(t, "Rajasthan", rec.State)
}

func TestStoreAge(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "N/A", storeAge("", now))
	require.Equal(t, "garbled", storeAge("garbled", now))
	require.Equal(t, "1 Years, 8 Months", storeAge("12 Jul 2024", now))
	require.Equal(t, "8 Months", storeAge("01 Jul 2025", now))
}

func TestBuildStatsUnparseableMonthSortsFirst(t *testing.T) {
	rec := recordstore.Record{
		StoreName: "Oddball",
		YearlyData: []recordstore.Metric{
			{Month: "Feb, 2025", Values: map[string]string{"Month": "Feb, 2025", "Revenue": "20"}},
			{Month: "Total", Values: map[string]string{"Month": "Total", "Revenue": "30"}},
			{Month: "Jan, 2025", Values: map[string]string{"Month": "Jan, 2025", "Revenue": "10"}},
		},
	}
	stats := buildStats(rec, time.Now())
	require.Equal(t, []string{"Total", "Jan, 2025", "Feb, 2025"}, stats.Labels)
	require.Equal(t, []float64{30, 10, 20}, stats.Revenue)
}
