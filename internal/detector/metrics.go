package detector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsEvaluatedTotal tracks events evaluated for arbitrage.
	EventsEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_detector_events_evaluated_total",
		Help: "Total number of events evaluated for Dutch-book arbitrage",
	})

	// OpportunitiesDetectedTotal tracks emitted opportunities by direction.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_detector_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"direction"},
	)

	// OpportunitiesRejectedTotal tracks rejected directions by reason.
	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_detector_opportunities_rejected_total",
			Help: "Total number of direction evaluations rejected by an emission gate",
		},
		[]string{"direction", "reason"},
	)

	// NetProfitCents tracks net profit of emitted opportunities.
	NetProfitCents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kalshi_arb_detector_net_profit_cents",
		Help:    "Net profit after fees of detected opportunities in cents",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 500, 1000, 2500},
	})
)
