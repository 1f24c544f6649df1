// Package catalog fetches, caches and filters the property catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// ErrCatalogUnavailable reports a failed or timed-out bulk fetch. It surfaces
// to the end user as a generic "try again later" message and is never retried
// within the same request.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

const (
	// fetchLimit caps one bulk listing call. Enough for a small or
	// mid-sized agency.
	fetchLimit = 500

	// DefaultPageSize is the number of properties returned per search page.
	DefaultPageSize = 3
)

// Config holds catalog client configuration.
type Config struct {
	BaseURL         string
	APIKey          string
	TTL             time.Duration
	FetchTimeout    time.Duration
	LocationTimeout time.Duration
}

// snapshot is one immutable cache generation. Replaced wholesale on refetch,
// never mutated in place, so readers need no locking.
type snapshot struct {
	records   []model.RawProperty
	fetchedAt time.Time
}

// Client is the catalog provider client with an in-memory TTL cache.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logger.Logger

	cache atomic.Pointer[snapshot]

	// now is injectable for TTL tests.
	now func() time.Time
}

// New creates a catalog client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = 8 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log,
		now:        time.Now,
	}
}

type listingResponse struct {
	Objects []model.RawProperty `json:"objects"`
}

// FetchAll returns all active records, serving from cache while it is valid.
// A refetch replaces the cache entirely. Empty snapshots are never cached:
// an upstream hiccup that yields zero records should not blank the catalog
// for a whole TTL window.
func (c *Client) FetchAll(ctx context.Context) ([]model.RawProperty, error) {
	if snap := c.cache.Load(); snap != nil && len(snap.records) > 0 && c.now().Sub(snap.fetchedAt) < c.cfg.TTL {
		metrics.CatalogCacheHitsTotal.Inc()
		c.logger.Debug("serving catalog from cache", zap.Int("records", len(snap.records)))
		return snap.records, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("format", "json")
	params.Set("lang", "es_ar")
	params.Set("limit", fmt.Sprint(fetchLimit))
	params.Set("offset", "0")

	reqURL := c.cfg.BaseURL + "/property/?" + params.Encode()
	c.logger.Info("fetching catalog from provider")

	var resp listingResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues("error").Inc()
		c.logger.Error("catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	c.cache.Store(&snapshot{records: resp.Objects, fetchedAt: c.now()})
	metrics.CatalogFetchesTotal.WithLabelValues("success").Inc()
	c.logger.Info("catalog cached", zap.Int("records", len(resp.Objects)))
	return resp.Objects, nil
}

// ResolveLocation resolves a free-text zone name to a provider location id.
// Any failure degrades to nil: a search without a zone filter beats an
// aborted search.
func (c *Client) ResolveLocation(ctx context.Context, query string) *model.LocationRef {
	if query == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.LocationTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("format", "json")
	params.Set("q", query)

	var raw json.RawMessage
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/location/quicksearch/?"+params.Encode(), &raw); err != nil {
		c.logger.Warn("location quicksearch failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	locations := decodeLocations(raw)
	if len(locations) == 0 {
		c.logger.Info("no location match", zap.String("query", query))
		return nil
	}

	loc := locations[0]
	name := loc.FullLocation
	if name == "" {
		name = loc.Name
	}
	c.logger.Info("location resolved",
		zap.String("query", query),
		zap.Int("location_id", loc.ID),
		zap.String("name", name),
	)
	return &model.LocationRef{ID: loc.ID, DisplayName: name}
}

type quicksearchLocation struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FullLocation string `json:"full_location"`
}

// decodeLocations accepts both response shapes the provider uses: a bare
// array and an {objects: [...]} wrapper.
func decodeLocations(raw json.RawMessage) []quicksearchLocation {
	var list []quicksearchLocation
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var wrapped struct {
		Objects []quicksearchLocation `json:"objects"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Objects
	}
	return nil
}

// Search applies the filter predicate over the full (cached) catalog and
// returns one page of normalized matches plus the total match count.
func (c *Client) Search(ctx context.Context, filters model.SearchFilters) (*model.SearchResult, error) {
	if filters.LocationID == nil && filters.Location != "" {
		if loc := c.ResolveLocation(ctx, filters.Location); loc != nil {
			filters.LocationID = &loc.ID
		}
	}

	records, err := c.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := applyFilters(records, filters)
	total := len(matched)

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]model.Property, 0, end-offset)
	for _, rec := range matched[offset:end] {
		page = append(page, Normalize(rec))
	}

	c.logger.Info("catalog search",
		zap.Int("total", total),
		zap.Int("returned", len(page)),
		zap.Int("offset", offset),
	)
	return &model.SearchResult{Properties: page, Total: total}, nil
}

// InvalidateCache drops the cached catalog so the next read refetches.
// Useful when the agency publishes new listings.
func (c *Client) InvalidateCache() {
	c.cache.Store(nil)
	c.logger.Info("catalog cache invalidated")
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
