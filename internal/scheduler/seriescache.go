package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/pkg/cache"
)

const (
	seriesCatalogKey = "series-catalog"

	// DefaultSeriesCacheTTL is the catalog freshness window when none is
	// configured.
	DefaultSeriesCacheTTL = 5 * time.Minute
)

// SeriesLister is the single client call the series cache wraps.
type SeriesLister interface {
	ListSeries(ctx context.Context) ([]kalshi.Series, error)
}

// SeriesCache serves the exchange's series catalog from a cache entry,
// refreshing it when the freshness TTL has elapsed. The entry is stored
// without an eviction TTL so a stale catalog stays servable when a
// refresh fails; freshness is tracked by fetchedAt alone.
type SeriesCache struct {
	lister SeriesLister
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	fetchedAt time.Time
}

// SeriesCacheConfig holds series cache configuration.
type SeriesCacheConfig struct {
	Lister SeriesLister
	Cache  cache.Cache
	TTL    time.Duration
	Logger *zap.Logger
}

// NewSeriesCache creates a new series cache.
func NewSeriesCache(cfg SeriesCacheConfig) *SeriesCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSeriesCacheTTL
	}

	return &SeriesCache{
		lister: cfg.Lister,
		cache:  cfg.Cache,
		ttl:    ttl,
		logger: cfg.Logger,
	}
}

// Get returns the catalog, refreshing it when stale. A failed refresh
// falls back to the previous catalog when one is still cached; with
// nothing cached the error propagates since there is no data to serve.
func (c *SeriesCache) Get(ctx context.Context) ([]kalshi.Series, error) {
	if time.Since(c.fetchedAt) < c.ttl {
		if catalog, ok := c.cached(); ok {
			return catalog, nil
		}
		// Entry lost to eviction; fall through to a refresh.
	}

	catalog, err := c.lister.ListSeries(ctx)
	if err != nil {
		if stale, ok := c.cached(); ok {
			seriesCacheStaleServes.Inc()
			c.logger.Warn("series-refresh-failed-serving-stale",
				zap.Int("series", len(stale)),
				zap.Time("fetched-at", c.fetchedAt),
				zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("refresh series catalog: %w", err)
	}

	c.cache.Set(seriesCatalogKey, catalog, 0)
	c.fetchedAt = time.Now()
	seriesCacheRefreshes.Inc()
	c.logger.Debug("series-catalog-refreshed", zap.Int("series", len(catalog)))

	return catalog, nil
}

// cached returns the stored catalog when present and non-empty.
func (c *SeriesCache) cached() ([]kalshi.Series, bool) {
	value, ok := c.cache.Get(seriesCatalogKey)
	if !ok {
		return nil, false
	}

	catalog, ok := value.([]kalshi.Series)
	if !ok || len(catalog) == 0 {
		return nil, false
	}
	return catalog, true
}
