package kalshi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks exchange requests by method and outcome.
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_client_requests_total",
			Help: "Total number of exchange API requests",
		},
		[]string{"method", "outcome"},
	)

	// rateLimitsTotal tracks 429 responses by method.
	rateLimitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_client_rate_limits_total",
			Help: "Total number of 429 responses from the exchange",
		},
		[]string{"method"},
	)

	// requestDuration tracks exchange request latency by method.
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kalshi_arb_client_request_duration_seconds",
			Help:    "Duration of exchange API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
