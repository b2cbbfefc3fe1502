package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CacheHitsTotal counts lookups that found a live entry.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_cache_hits_total",
		Help: "Total number of cache lookups that hit",
	})

	// CacheMissesTotal counts lookups that found nothing, including
	// entries dropped by admission or expiry.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_cache_misses_total",
		Help: "Total number of cache lookups that missed",
	})

	// CacheSetsTotal counts entries handed to the cache, admitted or not.
	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_cache_sets_total",
		Help: "Total number of cache writes attempted",
	})

	// CacheDeletesTotal counts explicit removals.
	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_cache_deletes_total",
		Help: "Total number of cache entries explicitly deleted",
	})
)
