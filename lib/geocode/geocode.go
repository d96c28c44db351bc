// Package geocode is a minimal client for the Nominatim search API.
// Lookups are best-effort: the harvesting pipeline treats every
// failure here as "no result".
package geocode

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"tumbledry-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
	State   string `json:"state"`
}

// Locality returns the first non-empty locality field, in the
// precedence order the enrichment policy prescribes.
func (a Address) Locality() string {
	for _, v := range []string{a.City, a.Town, a.Village, a.County} {
		if v != "" {
			return v
		}
	}
	return ""
}

type searchResult struct {
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
}

type ClientOptions struct {
	// defaults to the public nominatim instance
	BaseUrl   string
	UserAgent string
	// minimum spacing between requests, nominatim asks for >= 1s
	MinInterval time.Duration
}

type Client struct {
	http        *resty.Client
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://nominatim.openstreetmap.org"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tumbledry-backend/1.0"
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = 1100 * time.Millisecond
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(time.Second * 10)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "geocode/http")

	return &Client{
		http:        client,
		minInterval: opts.MinInterval,
	}
}

// Geocode resolves a free-text place name into an address. The second
// return is false when the service had no result for the query.
func (c *Client) Geocode(ctx context.Context, query string) (Address, bool, error) {
	c.throttle()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":              query,
			"format":         "jsonv2",
			"addressdetails": "1",
			"limit":          "1",
		}).
		Get("/search")
	if err != nil {
		return Address{}, false, err
	}

	var results []searchResult
	err = json.Unmarshal(res.Body(), &results)
	if err != nil {
		return Address{}, false, err
	}
	if len(results) == 0 {
		return Address{}, false, nil
	}
	return results[0].Address, true, nil
}

func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	since := time.Since(c.lastCall)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastCall = time.Now()
}
