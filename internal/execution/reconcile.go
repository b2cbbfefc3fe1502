package execution

import (
	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
)

// Reconciliation compares the economics the detector expected with what
// the exchange actually confirmed.
type Reconciliation struct {
	EventTicker      string
	Direction        detector.Direction
	OrderIDs         []string
	Statuses         []string
	ExpectedNetCents int64
	ActualNetCents   int64
	SlippageCents    int64
	Complete         bool
}

// Reconcile matches the filled legs to the opportunity's brackets by
// ticker and recomputes the net from the exchange-returned yes_price and
// fill_count of each. Per-leg price drift shows up in the slippage, never
// in the booked economics. A result that is not fully filled, or that is
// missing a bracket, is marked incomplete.
func Reconcile(opp *detector.Opportunity, res *Result) *Reconciliation {
	filledByTicker := make(map[string]*Leg, len(res.Filled))
	for i := range res.Filled {
		filledByTicker[res.Filled[i].Ticker] = &res.Filled[i]
	}

	var (
		matched  int
		sumCents int64
		fees     int64
		minCount int64
	)

	for _, bracket := range opp.Brackets {
		leg, ok := filledByTicker[bracket.Ticker]
		if !ok {
			continue
		}

		price := leg.Order.YesPriceCents()
		count := leg.Order.EffectiveCount()

		sumCents += price
		fees += detector.TakerFeeCents(count, price)
		if matched == 0 || count < minCount {
			minCount = count
		}
		matched++
	}

	var gross int64
	if matched > 0 {
		if opp.Direction == detector.DirectionLong {
			gross = (100 - sumCents) * minCount
		} else {
			gross = (sumCents - 100) * minCount
		}
	}

	actual := gross - fees
	if matched == 0 {
		actual = 0
	}

	rec := &Reconciliation{
		EventTicker:      opp.EventTicker,
		Direction:        opp.Direction,
		ExpectedNetCents: opp.NetProfitCents,
		ActualNetCents:   actual,
		SlippageCents:    actual - opp.NetProfitCents,
		Complete:         res.FullyFilled() && matched == len(opp.Brackets),
	}

	for _, leg := range res.PlacedLegs() {
		rec.OrderIDs = append(rec.OrderIDs, leg.Order.OrderID)
		rec.Statuses = append(rec.Statuses, leg.Order.Status)
	}

	slippageCents.Set(float64(rec.SlippageCents))
	return rec
}

// Log writes the reconciliation outcome at the level its completeness
// deserves.
func (rec *Reconciliation) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("event", rec.EventTicker),
		zap.String("direction", string(rec.Direction)),
		zap.Int64("expected-net-cents", rec.ExpectedNetCents),
		zap.Int64("actual-net-cents", rec.ActualNetCents),
		zap.Int64("slippage-cents", rec.SlippageCents),
		zap.Strings("order-ids", rec.OrderIDs),
	}

	if rec.Complete {
		logger.Info("reconciliation-complete", fields...)
		return
	}
	logger.Warn("reconciliation-incomplete", fields...)
}
