package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenArbs tracks positions opened this session.
	OpenArbs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kalshi_arb_risk_open_arbs",
		Help: "Number of arb positions opened this session",
	})

	// DailyPnLCents tracks the running daily PnL.
	DailyPnLCents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kalshi_arb_risk_daily_pnl_cents",
		Help: "Expected PnL booked against the current UTC day in cents",
	})

	// DailyOrders tracks orders consumed from the daily budget.
	DailyOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kalshi_arb_risk_daily_orders",
		Help: "Orders placed during the current UTC day",
	})

	// ExecutionsBlockedTotal tracks blocked executions by limit.
	ExecutionsBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalshi_arb_risk_executions_blocked_total",
			Help: "Total number of executions blocked by a risk limit",
		},
		[]string{"reason"},
	)

	// DayRolloversTotal tracks UTC day rollovers observed.
	DayRolloversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kalshi_arb_risk_day_rollovers_total",
		Help: "Total number of UTC day rollovers that reset the daily counters",
	})
)
