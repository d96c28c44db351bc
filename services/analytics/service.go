// Package analytics serves the harvested records as a JSON API: a
// filterable paginated store listing, per-store chart data with KPIs,
// and manual location patches.
package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"tumbledry-backend/lib/recordstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/analytics")

type Service struct {
	store recordstore.Store
}

func NewService(store recordstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stores", s.handleListStores)
		r.Get("/stats/{store_code}", s.handleStoreStats)
		r.Post("/update_locations", s.handleUpdateLocations)
	})
	return r
}

type listResponse struct {
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Data  []StoreRow `json:"data"`
}

func (s *Service) handleListStores(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleListStores")
	defer span.End()

	records, err := s.store.List(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "list failed")
		writeError(w, http.StatusInternalServerError, "failed to list stores")
		slog.ErrorContext(ctx, "failed to list stores", "err", err)
		return
	}

	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	filters := map[string]string{
		"code":   strings.ToLower(q.Get("code")),
		"name":   strings.ToLower(q.Get("name")),
		"city":   strings.ToLower(q.Get("city")),
		"state":  strings.ToLower(q.Get("state")),
		"status": strings.ToLower(q.Get("status")),
	}

	rows := make([]StoreRow, 0, len(records))
	for _, rec := range records {
		row := storeRowFrom(rec)
		if matchesSearch(row, search) && matchesFilters(row, filters) {
			rows = append(rows, row)
		}
	}

	sortRows(rows, q.Get("sort_by"), q.Get("order"))

	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 10)
	writeJSON(w, http.StatusOK, listResponse{
		Total: len(rows),
		Page:  page,
		Limit: limit,
		Data:  paginate(rows, page, limit),
	})
}

func matchesSearch(row StoreRow, search string) bool {
	if search == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		row.StoreCode, row.StoreName, row.City, row.State, row.Status,
	}, " "))
	return strings.Contains(haystack, search)
}

// column filters are case-insensitive substring matches, except status
// which matches exactly ("all" disables it)
func matchesFilters(row StoreRow, filters map[string]string) bool {
	if f := filters["code"]; f != "" && !strings.Contains(strings.ToLower(row.StoreCode), f) {
		return false
	}
	if f := filters["name"]; f != "" && !strings.Contains(strings.ToLower(row.StoreName), f) {
		return false
	}
	if f := filters["city"]; f != "" && !strings.Contains(strings.ToLower(row.City), f) {
		return false
	}
	if f := filters["state"]; f != "" && !strings.Contains(strings.ToLower(row.State), f) {
		return false
	}
	if f := filters["status"]; f != "" && f != "all" && f != strings.ToLower(row.Status) {
		return false
	}
	return true
}

func paginate(rows []StoreRow, page, limit int) []StoreRow {
	start := (page - 1) * limit
	if start >= len(rows) || start < 0 {
		return []StoreRow{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func intParam(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func (s *Service) handleStoreStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleStoreStats")
	defer span.End()

	code := chi.URLParam(r, "store_code")
	rec, ok, err := s.store.Get(ctx, code)
	if err != nil {
		span.SetStatus(codes.Error, "get failed")
		writeError(w, http.StatusInternalServerError, "failed to load store")
		slog.ErrorContext(ctx, "failed to load store", "store_code", code, "err", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Store not found")
		return
	}

	writeJSON(w, http.StatusOK, buildStats(rec, time.Now()))
}

type locationUpdate struct {
	StoreCode string  `json:"storeCode"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

type updateLocationsRequest struct {
	Updates []locationUpdate `json:"updates"`
}

type updateLocationsResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}

func (s *Service) handleUpdateLocations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleUpdateLocations")
	defer span.End()

	var req updateLocationsRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := 0
	for _, u := range req.Updates {
		if u.StoreCode == "" || (u.City == nil && u.State == nil) {
			continue
		}
		ok, err := s.store.SetLocation(ctx, u.StoreCode, u.City, u.State)
		if err != nil {
			span.SetStatus(codes.Error, "location update failed")
			writeError(w, http.StatusInternalServerError, "failed to update locations")
			slog.ErrorContext(ctx, "failed to update location", "store_code", u.StoreCode, "err", err)
			return
		}
		if ok {
			updated++
		}
	}

	slog.InfoContext(ctx, "updated store locations", "updated", updated)
	writeJSON(w, http.StatusOK, updateLocationsResponse{Success: true, Updated: updated})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
