package harvester

import (
	"context"
	"log/slog"
	"strings"
	"tumbledry-backend/lib/geocode"
	"tumbledry-backend/lib/recordstore"
	"tumbledry-backend/lib/scrapers/tumbledry"
)

// Geocoder is the location fallback. The second return is false when
// the service had no result for the query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Address, bool, error)
}

// deriveStatus classifies a store from what its page exposed. A page
// with no identity but with history is a store that was closed; no
// identity and no history means the code was never active.
func deriveStatus(ext tumbledry.Extraction) recordstore.Status {
	infoMissing := isMissing(ext.Identity.StoreName) || isMissing(ext.Identity.ReportedCode)
	hasData := len(ext.Rows) > 0

	switch {
	case infoMissing && hasData:
		return recordstore.StatusClosed
	case infoMissing:
		return recordstore.StatusInactive
	default:
		return recordstore.StatusActive
	}
}

func isMissing(v string) bool {
	return v == "" || v == tumbledry.NotFound
}

// resolveLocation turns a store name into city/state. The static
// city table wins outright; the geocoder is a best-effort fallback
// whose failures all collapse into the Unknown sentinel.
func (s *Service) resolveLocation(ctx context.Context, storeName string) (string, string) {
	if city, state, ok := ExtractFromName(storeName); ok {
		return city, state
	}

	addr, ok := s.geocodeQuiet(ctx, storeName)
	if !ok {
		// store names often carry branch numbers that confuse the
		// geocoder, retry once without digits
		stripped := stripDigits(storeName)
		if stripped != storeName {
			addr, ok = s.geocodeQuiet(ctx, stripped)
		}
	}
	if !ok {
		return recordstore.Unknown, recordstore.Unknown
	}

	city := addr.Locality()
	if city == "" {
		city = recordstore.Unknown
	}
	state := addr.State
	if state == "" {
		state = recordstore.Unknown
	}
	return city, state
}

func (s *Service) geocodeQuiet(ctx context.Context, query string) (geocode.Address, bool) {
	if s.geocoder == nil || strings.TrimSpace(query) == "" {
		return geocode.Address{}, false
	}
	addr, ok, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		// geocoding failures never propagate, a miss is a miss
		slog.WarnContext(ctx, "geocoding failed", "query", query, "err", err)
		return geocode.Address{}, false
	}
	return addr, ok
}

func stripDigits(s string) string {
	out := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(out)
}
