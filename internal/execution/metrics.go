package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ordersPlacedTotal tracks order legs by the status they came back with.
	ordersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_execution_orders_total",
			Help: "Total number of order legs by returned status",
		},
		[]string{"status"},
	)

	// executionsTotal tracks whole opportunities by classified outcome.
	executionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_execution_executions_total",
			Help: "Total number of executed opportunities by outcome",
		},
		[]string{"outcome"},
	)

	// cancellationsTotal tracks unfilled legs cancelled after mixed outcomes.
	cancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_execution_cancellations_total",
		Help: "Total number of resting or unexpected orders cancelled",
	})

	// slippageCents records the most recent reconciliation slippage.
	slippageCents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kalshi_arb_execution_slippage_cents",
		Help: "Slippage of the most recent reconciliation in cents",
	})
)
