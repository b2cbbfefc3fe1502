package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// alertsTotal tracks alert deliveries by outcome.
//
//nolint:gochecknoglobals // prometheus metric
var alertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kalshi_arb_telegram_alerts_total",
		Help: "Total number of alert deliveries by outcome",
	},
	[]string{"outcome"},
)
