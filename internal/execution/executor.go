// Package execution places the legs of a detected opportunity on the
// exchange and classifies what actually happened to each one.
package execution

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// Executor submits one limit order per bracket and aggregates the results.
type Executor struct {
	client       *kalshi.Client
	positionSize int64
	logger       *zap.Logger
}

// Config holds executor configuration.
type Config struct {
	Client       *kalshi.Client
	PositionSize int64
	Logger       *zap.Logger
}

// New creates a new executor.
func New(cfg *Config) (*Executor, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if cfg.PositionSize < 1 {
		return nil, fmt.Errorf("position size must be >= 1, got %d", cfg.PositionSize)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Executor{
		client:       cfg.Client,
		positionSize: cfg.PositionSize,
		logger:       cfg.Logger,
	}, nil
}

// Leg pairs a bracket ticker with the exchange's view of its order.
type Leg struct {
	Ticker string
	Order  *kalshi.Order
}

// Result classifies every leg of one executed opportunity.
type Result struct {
	EventTicker string
	Direction   detector.Direction
	Filled      []Leg
	Resting     []Leg
	Other       []Leg
	APIFailures []string
}

// FullyFilled reports whether every leg came back executed.
func (r *Result) FullyFilled() bool {
	return len(r.Filled) > 0 && len(r.Resting) == 0 && len(r.Other) == 0 && len(r.APIFailures) == 0
}

// TotalFailure reports whether no order reached the book at all.
func (r *Result) TotalFailure() bool {
	return len(r.Filled) == 0 && len(r.Resting) == 0 && len(r.Other) == 0
}

// PlacedOrders is the number of orders the exchange accepted, which is
// what the daily order budget is charged for.
func (r *Result) PlacedOrders() int {
	return len(r.Filled) + len(r.Resting) + len(r.Other)
}

// PlacedLegs returns every accepted leg regardless of status.
func (r *Result) PlacedLegs() []Leg {
	legs := make([]Leg, 0, r.PlacedOrders())
	legs = append(legs, r.Filled...)
	legs = append(legs, r.Resting...)
	legs = append(legs, r.Other...)
	return legs
}

// WorstCaseLossCents is the exposure of the filled legs when the rest of
// the book could not be completed: sum of yes_price times count over
// every filled order.
func (r *Result) WorstCaseLossCents() int64 {
	var loss int64
	for _, leg := range r.Filled {
		loss += leg.Order.YesPriceCents() * leg.Order.EffectiveCount()
	}
	return loss
}

// BuildOrderRequest constructs the limit order for one bracket. LONG buys
// YES at the bracket's ask, SHORT sells YES at the bracket's bid. The NO
// price stays null on the wire.
func BuildOrderRequest(bracket detector.BracketQuote, direction detector.Direction, count int64) *kalshi.CreateOrderRequest {
	req := &kalshi.CreateOrderRequest{
		Ticker:        bracket.Ticker,
		ClientOrderID: uuid.New().String(),
		Side:          kalshi.SideYes,
		Type:          kalshi.OrderTypeLimit,
		Count:         count,
	}

	if direction == detector.DirectionLong {
		req.Action = kalshi.ActionBuy
		req.YesPrice = kalshi.Int64Ptr(bracket.YesAsk)
	} else {
		req.Action = kalshi.ActionSell
		req.YesPrice = kalshi.Int64Ptr(bracket.YesBid)
	}

	return req
}

// legResult is the outcome slot one dispatch goroutine writes.
type legResult struct {
	ticker   string
	order    *kalshi.Order
	err      error
	panicked bool
}

// Execute places every leg of the opportunity in parallel, waits for all
// of them, and classifies each as filled, resting, other or an API
// failure. A leg whose goroutine panics is logged and contributes to no
// bucket; reconciliation surfaces it as a missing bracket.
func (e *Executor) Execute(ctx context.Context, opp *detector.Opportunity) *Result {
	e.logger.Info("executing-opportunity",
		zap.String("event", opp.EventTicker),
		zap.String("direction", string(opp.Direction)),
		zap.Int("legs", len(opp.Brackets)),
		zap.Int64("expected-net-cents", opp.NetProfitCents))

	results := make([]legResult, len(opp.Brackets))
	var wg sync.WaitGroup

	// Every goroutine starts before any leg is awaited.
	for i, bracket := range opp.Brackets {
		wg.Add(1)
		go func(i int, bracket detector.BracketQuote) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].panicked = true
					e.logger.Error("order-leg-panicked",
						zap.String("ticker", bracket.Ticker),
						zap.Any("panic", r))
				}
			}()

			results[i].ticker = bracket.Ticker
			req := BuildOrderRequest(bracket, opp.Direction, e.positionSize)
			order, err := e.client.CreateOrder(ctx, req)
			results[i].order = order
			results[i].err = err
		}(i, bracket)
	}
	wg.Wait()

	res := &Result{
		EventTicker: opp.EventTicker,
		Direction:   opp.Direction,
	}

	for _, lr := range results {
		switch {
		case lr.panicked:
			// Logged at panic time; no bucket.
		case lr.err != nil:
			res.APIFailures = append(res.APIFailures, lr.ticker)
			ordersPlacedTotal.WithLabelValues("api_failure").Inc()
			e.logger.Error("order-leg-failed",
				zap.String("event", opp.EventTicker),
				zap.String("ticker", lr.ticker),
				zap.Error(lr.err))
		case lr.order.Status == kalshi.OrderStatusExecuted:
			res.Filled = append(res.Filled, Leg{Ticker: lr.ticker, Order: lr.order})
			ordersPlacedTotal.WithLabelValues(kalshi.OrderStatusExecuted).Inc()
		case lr.order.Status == kalshi.OrderStatusResting:
			res.Resting = append(res.Resting, Leg{Ticker: lr.ticker, Order: lr.order})
			ordersPlacedTotal.WithLabelValues(kalshi.OrderStatusResting).Inc()
		default:
			res.Other = append(res.Other, Leg{Ticker: lr.ticker, Order: lr.order})
			ordersPlacedTotal.WithLabelValues("other").Inc()
			e.logger.Warn("order-leg-unexpected-status",
				zap.String("event", opp.EventTicker),
				zap.String("ticker", lr.ticker),
				zap.String("status", lr.order.Status))
		}
	}

	executionsTotal.WithLabelValues(res.outcome()).Inc()
	e.logger.Info("execution-classified",
		zap.String("event", opp.EventTicker),
		zap.String("outcome", res.outcome()),
		zap.Int("filled", len(res.Filled)),
		zap.Int("resting", len(res.Resting)),
		zap.Int("other", len(res.Other)),
		zap.Int("api-failures", len(res.APIFailures)))

	return res
}

// CancelUnfilled cancels every resting and other order of a mixed result.
// Cancellation is best-effort; a transport failure is logged and the
// order is left for manual cleanup.
func (e *Executor) CancelUnfilled(ctx context.Context, res *Result) {
	for _, leg := range append(append([]Leg{}, res.Resting...), res.Other...) {
		if err := e.client.CancelOrder(ctx, leg.Order.OrderID); err != nil {
			e.logger.Error("cancel-unfilled-failed",
				zap.String("event", res.EventTicker),
				zap.String("ticker", leg.Ticker),
				zap.String("order-id", leg.Order.OrderID),
				zap.Error(err))
			continue
		}
		cancellationsTotal.Inc()
		e.logger.Info("order-cancelled",
			zap.String("event", res.EventTicker),
			zap.String("ticker", leg.Ticker),
			zap.String("order-id", leg.Order.OrderID))
	}
}

func (r *Result) outcome() string {
	switch {
	case r.FullyFilled():
		return "fully_filled"
	case r.TotalFailure():
		return "total_failure"
	default:
		return "mixed"
	}
}
