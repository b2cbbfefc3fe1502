package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cyclesTotal counts scan cycles started, including failed ones.
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_scheduler_cycles_total",
		Help: "Total number of scan cycles started",
	})

	// cycleDuration records the wall time of completed cycles.
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kalshi_arb_scheduler_cycle_duration_seconds",
		Help:    "Duration of completed scan cycles in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// eventsSkippedTotal tracks events dropped before evaluation by reason.
	eventsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_scheduler_events_skipped_total",
			Help: "Total number of events skipped before evaluation by reason",
		},
		[]string{"reason"},
	)

	// seriesCacheRefreshes counts successful catalog refreshes.
	seriesCacheRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_scheduler_series_cache_refreshes_total",
		Help: "Total number of successful series catalog refreshes",
	})

	// seriesCacheStaleServes counts catalogs served past their TTL after
	// a failed refresh.
	seriesCacheStaleServes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_scheduler_series_cache_stale_serves_total",
		Help: "Total number of stale series catalogs served after refresh failures",
	})
)
