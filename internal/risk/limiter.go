// Package risk enforces process-wide execution limits: a cap on open
// arbs, a daily loss floor, and a daily order budget. Daily counters
// roll over lazily on the first check of a new UTC day.
package risk

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hard limits. The configured max_open_positions is advisory only and
// surfaced through Status; the effective cap is MaxOpenArbs.
const (
	MaxOpenArbs       = 5
	MaxDailyLossCents = 500
	MaxDailyOrders    = 50
)

// Reason identifies the limit that blocked an execution.
type Reason string

const (
	ReasonMaxOpenArbs    Reason = "MAX_OPEN_ARBS"
	ReasonMaxDailyLoss   Reason = "MAX_DAILY_LOSS"
	ReasonMaxDailyOrders Reason = "MAX_DAILY_ORDERS"
)

// Config holds limiter configuration.
type Config struct {
	// AdvisoryMaxOpenPositions is the configured position cap. It is
	// reported but not enforced; MaxOpenArbs is the effective limit.
	AdvisoryMaxOpenPositions int
	Logger                   *zap.Logger
}

// Limiter tracks open arbs and daily counters against the hard limits.
type Limiter struct {
	advisoryMax int
	logger      *zap.Logger

	mu            sync.Mutex
	openArbs      int
	dailyPnLCents int64
	dailyOrders   int
	today         string // UTC date, YYYY-MM-DD
}

// Status is a point-in-time snapshot for logs and the status endpoint.
type Status struct {
	OpenArbs                 int       `json:"open_arbs"`
	DailyPnLCents            int64     `json:"daily_pnl_cents"`
	DailyOrders              int       `json:"daily_orders"`
	Today                    string    `json:"today"`
	AdvisoryMaxOpenPositions int       `json:"advisory_max_open_positions"`
	CheckedAt                time.Time `json:"checked_at"`
}

// New creates a new limiter starting a fresh accounting day.
func New(cfg Config) *Limiter {
	l := &Limiter{
		advisoryMax: cfg.AdvisoryMaxOpenPositions,
		logger:      cfg.Logger,
		today:       time.Now().UTC().Format("2006-01-02"),
	}

	OpenArbs.Set(0)
	DailyPnLCents.Set(0)
	DailyOrders.Set(0)

	return l
}

// Allow reports whether a new execution may proceed. When blocked it
// returns the reason so callers can alert with the current counters.
func (l *Limiter) Allow() (Reason, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()

	switch {
	case l.openArbs >= MaxOpenArbs:
		ExecutionsBlockedTotal.WithLabelValues(string(ReasonMaxOpenArbs)).Inc()
		return ReasonMaxOpenArbs, false
	case l.dailyPnLCents <= -MaxDailyLossCents:
		ExecutionsBlockedTotal.WithLabelValues(string(ReasonMaxDailyLoss)).Inc()
		return ReasonMaxDailyLoss, false
	case l.dailyOrders >= MaxDailyOrders:
		ExecutionsBlockedTotal.WithLabelValues(string(ReasonMaxDailyOrders)).Inc()
		return ReasonMaxDailyOrders, false
	}

	return "", true
}

// RecordFill registers a fully filled arb: one more open position and
// its expected net profit booked into the daily PnL.
func (l *Limiter) RecordFill(netProfitCents int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	l.openArbs++
	l.dailyPnLCents += netProfitCents

	OpenArbs.Set(float64(l.openArbs))
	DailyPnLCents.Set(float64(l.dailyPnLCents))
}

// RecordLoss books a realized or worst-case loss against the daily PnL.
func (l *Limiter) RecordLoss(lossCents int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	l.dailyPnLCents -= lossCents

	DailyPnLCents.Set(float64(l.dailyPnLCents))
}

// AddOrders consumes n slots of the daily order budget.
func (l *Limiter) AddOrders(n int) {
	if n <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	l.dailyOrders += n

	DailyOrders.Set(float64(l.dailyOrders))
}

// Status returns the current counters.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()

	return Status{
		OpenArbs:                 l.openArbs,
		DailyPnLCents:            l.dailyPnLCents,
		DailyOrders:              l.dailyOrders,
		Today:                    l.today,
		AdvisoryMaxOpenPositions: l.advisoryMax,
		CheckedAt:                time.Now().UTC(),
	}
}

// rolloverLocked resets the daily counters when the UTC date has moved
// on since the last observation. Open arbs survive the rollover since a
// position may remain open across midnight. Callers must hold l.mu.
func (l *Limiter) rolloverLocked() {
	date := time.Now().UTC().Format("2006-01-02")
	if date == l.today {
		return
	}

	l.logger.Info("daily-counters-rolled-over",
		zap.String("closed-day", l.today),
		zap.Int64("closing-pnl-cents", l.dailyPnLCents),
		zap.Int("closing-orders", l.dailyOrders),
		zap.Int("open-arbs", l.openArbs))

	l.dailyPnLCents = 0
	l.dailyOrders = 0
	l.today = date

	DailyPnLCents.Set(0)
	DailyOrders.Set(0)
	DayRolloversTotal.Inc()
}
