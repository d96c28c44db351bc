// Package harvester runs the batch extraction loop: one store code at
// a time against an authenticated portal session, with per-item
// failure isolation, politeness pacing and a circuit breaker for dead
// transports.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/scrapers/tumbledry"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/harvester")

// PageFetcher yields the rendered detail page for a store code.
// Satisfied by *tumbledry.Client.
type PageFetcher interface {
	FetchStorePage(ctx context.Context, code string) (tumbledry.Page, error)
}

type Options struct {
	// store codes are a fixed alphabetic prefix plus a zero-padded
	// numeric suffix, e.g. A007
	CodePrefix string
	CodeWidth  int

	// bounds for the randomized delay between stores that returned
	// data. empty results skip the delay entirely.
	PacingMin time.Duration
	PacingMax time.Duration
}

type Service struct {
	fetcher  PageFetcher
	store    recordstore.Store
	geocoder Geocoder
	opts     Options
}

func NewService(fetcher PageFetcher, store recordstore.Store, geocoder Geocoder, opts Options) *Service {
	if opts.CodePrefix == "" {
		opts.CodePrefix = "A"
	}
	if opts.CodeWidth == 0 {
		opts.CodeWidth = 3
	}
	if opts.PacingMin == 0 {
		opts.PacingMin = 2 * time.Second
	}
	if opts.PacingMax <= opts.PacingMin {
		opts.PacingMax = opts.PacingMin + 4*time.Second
	}

	return &Service{
		fetcher:  fetcher,
		store:    store,
		geocoder: geocoder,
		opts:     opts,
	}
}

func (s *Service) FormatCode(index int) string {
	return fmt.Sprintf("%s%0*d", s.opts.CodePrefix, s.opts.CodeWidth, index)
}

type RunSummary struct {
	Attempted       int
	Saved           int
	Failed          int
	ExpiredSessions int
	// the circuit breaker tripped and the rest of the range was
	// never attempted
	Suspended bool
}

// HarvestRange processes the contiguous code range [start, start+count).
// One bad store never aborts the batch; a suspended network transport
// always does. There is no automatic resumption: re-running with the
// next start index is the caller's call.
func (s *Service) HarvestRange(ctx context.Context, start, count int) (RunSummary, error) {
	ctx, span := tracer.Start(ctx, "HarvestRange")
	defer span.End()
	span.SetAttributes(
		attribute.Int("start", start),
		attribute.Int("count", count),
	)

	var summary RunSummary
	for i := start; i < start+count; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		code := s.FormatCode(i)
		rows, err := s.harvestOne(ctx, code)
		summary.Attempted++
		if err != nil {
			summary.Failed++
			if errors.Is(err, tumbledry.ErrSessionExpired) {
				summary.ExpiredSessions++
			}
			if errors.Is(err, tumbledry.ErrNetworkSuspended) {
				summary.Suspended = true
				span.SetStatus(codes.Error, "network suspended, batch aborted")
				slog.ErrorContext(ctx, "network suspended, aborting batch", "store_code", code)
				return summary, err
			}
			slog.WarnContext(ctx, "failed to harvest store", "store_code", code, "err", err)
			continue
		}
		summary.Saved++

		// pacing only buys goodwill on pages that actually served data
		if rows > 0 && i < start+count-1 {
			time.Sleep(s.pacingDelay())
		}
	}

	slog.InfoContext(
		ctx, "batch finished",
		"attempted", summary.Attempted,
		"saved", summary.Saved,
		"failed", summary.Failed,
		"expired_sessions", summary.ExpiredSessions,
	)
	return summary, nil
}

func (s *Service) harvestOne(ctx context.Context, code string) (int, error) {
	ctx, span := tracer.Start(ctx, "harvestOne")
	defer span.End()
	span.SetAttributes(attribute.String("store_code", code))

	page, err := s.fetcher.FetchStorePage(ctx, code)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return 0, err
	}

	ext, err := tumbledry.ExtractStorePage(ctx, page, code)
	if err != nil {
		span.SetStatus(codes.Error, "extraction failed")
		return 0, err
	}

	status := deriveStatus(ext)
	city, state := recordstore.Unknown, recordstore.Unknown
	if status == recordstore.StatusActive {
		city, state = s.resolveLocation(ctx, ext.Identity.StoreName)
	}

	rec := recordstore.Record{
		StoreCode:  code,
		StoreName:  ext.Identity.StoreName,
		Status:     status,
		LaunchDate: ext.Identity.LaunchDate,
		City:       city,
		State:      state,
	}
	for _, row := range ext.Rows {
		rec.YearlyData = append(rec.YearlyData, recordstore.Metric{
			Month:   row["Month"],
			Headers: ext.Headers,
			Values:  row,
		})
	}

	err = s.store.Upsert(ctx, rec)
	if err != nil {
		span.SetStatus(codes.Error, "upsert failed")
		return 0, err
	}

	slog.DebugContext(
		ctx, "harvested store",
		"store_code", code,
		"status", status,
		"rows", len(ext.Rows),
	)
	return len(ext.Rows), nil
}

func (s *Service) pacingDelay() time.Duration {
	min := int(s.opts.PacingMin / time.Millisecond)
	max := int(s.opts.PacingMax / time.Millisecond)
	ms, err := random.IntRange(min, max)
	if err != nil {
		ms = (min + max) / 2
	}
	return time.Duration(ms) * time.Millisecond
}
