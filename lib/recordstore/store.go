// Package recordstore persists harvested store records. Writes are
// idempotent merges keyed by store code: re-running a harvest over the
// same page content converges to the same stored state.
package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"tumbledry-backend/lib/recordstore/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusClosed   Status = "Closed"
)

// Unknown marks a location the pipeline failed to resolve. It is a
// real stored value, distinct from a column that was never written.
const Unknown = "Unknown"

// Metric is one reporting month of the yearly summary table. Values
// are keyed by the column labels the table exposed during that
// harvest; Headers preserves their on-page order.
type Metric struct {
	Month   string
	Headers []string
	Values  map[string]string
}

type Record struct {
	StoreCode     string
	StoreName     string
	Status        Status
	LaunchDate    string
	City          string
	State         string
	LastUpdatedAt time.Time
	YearlyData    []Metric
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type metricPayload struct {
	Headers []string          `json:"headers"`
	Values  map[string]string `json:"values"`
}

// Upsert inserts or merges a harvested record. Identity and status
// fields always take the fresh value. City and state improve
// monotonically: a fresh Unknown (or empty) never clobbers a known
// value. Metric rows are merged by month, so months missing from the
// fresh page keep their previously stored data.
func (s Store) Upsert(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	existing, err := txqry.GetStore(ctx, rec.StoreCode)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if rec.LastUpdatedAt.IsZero() {
		rec.LastUpdatedAt = time.Now()
	}

	err = txqry.UpsertStore(ctx, db.UpsertStoreParams{
		StoreCode:     rec.StoreCode,
		StoreName:     rec.StoreName,
		Status:        string(rec.Status),
		LaunchDate:    rec.LaunchDate,
		City:          mergeLocation(rec.City, existing.City),
		State:         mergeLocation(rec.State, existing.State),
		LastUpdatedAt: rec.LastUpdatedAt.Unix(),
	})
	if err != nil {
		return err
	}

	for i, m := range rec.YearlyData {
		payload, err := json.Marshal(metricPayload{
			Headers: m.Headers,
			Values:  m.Values,
		})
		if err != nil {
			return err
		}

		month := m.Month
		if month == "" {
			// rows without a month label still need a stable merge key
			month = fmt.Sprintf("row-%d", i)
		}
		err = txqry.UpsertStoreMetric(ctx, db.UpsertStoreMetricParams{
			StoreCode: rec.StoreCode,
			Month:     month,
			Payload:   string(payload),
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func mergeLocation(fresh, existing string) string {
	if fresh != "" && fresh != Unknown {
		return fresh
	}
	if existing != "" && existing != Unknown {
		return existing
	}
	if fresh != "" {
		return fresh
	}
	return existing
}

func (s Store) Get(ctx context.Context, storeCode string) (Record, bool, error) {
	row, err := s.qry.GetStore(ctx, storeCode)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	metrics, err := s.qry.GetStoreMetrics(ctx, storeCode)
	if err != nil {
		return Record{}, false, err
	}

	rec := recordFromRow(row)
	for _, m := range metrics {
		metric, ok := metricFromRow(ctx, m)
		if !ok {
			continue
		}
		rec.YearlyData = append(rec.YearlyData, metric)
	}
	return rec, true, nil
}

// List returns every stored record with its metrics. Callers filter
// and sort in memory; the collection is harvest-batch sized.
func (s Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.qry.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	metricRows, err := s.qry.ListStoreMetrics(ctx)
	if err != nil {
		return nil, err
	}

	metricsByCode := make(map[string][]Metric)
	for _, m := range metricRows {
		metric, ok := metricFromRow(ctx, m)
		if !ok {
			continue
		}
		metricsByCode[m.StoreCode] = append(metricsByCode[m.StoreCode], metric)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		rec := recordFromRow(row)
		rec.YearlyData = metricsByCode[row.StoreCode]
		records[i] = rec
	}
	return records, nil
}

// SetLocation overrides city and/or state for a store. Nil fields are
// left untouched. Reports whether the store existed.
func (s Store) SetLocation(ctx context.Context, storeCode string, city, state *string) (bool, error) {
	existing, err := s.qry.GetStore(ctx, storeCode)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if city != nil {
		existing.City = *city
	}
	if state != nil {
		existing.State = *state
	}
	err = s.qry.SetStoreLocation(ctx, db.SetStoreLocationParams{
		City:      existing.City,
		State:     existing.State,
		StoreCode: storeCode,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func recordFromRow(row db.Store) Record {
	return Record{
		StoreCode:     row.StoreCode,
		StoreName:     row.StoreName,
		Status:        Status(row.Status),
		LaunchDate:    row.LaunchDate,
		City:          row.City,
		State:         row.State,
		LastUpdatedAt: time.Unix(row.LastUpdatedAt, 0),
	}
}

func metricFromRow(ctx context.Context, row db.StoreMetric) (Metric, bool) {
	var payload metricPayload
	err := json.Unmarshal([]byte(row.Payload), &payload)
	if err != nil {
		slog.WarnContext(ctx, "failed to unmarshal stored metric", "store_code", row.StoreCode, "month", row.Month, "err", err)
		return Metric{}, false
	}
	return Metric{
		Month:   row.Month,
		Headers: payload.Headers,
		Values:  payload.Values,
	}, true
}
