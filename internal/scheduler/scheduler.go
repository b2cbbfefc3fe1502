// Package scheduler drives the scan loop: series catalog to events to
// order books to the detector, then the risk gate and the executor for
// whatever was found. Every cycle ends with a summary row in the scans
// sink regardless of what happened inside it.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/internal/risk"
	"github.com/mselser95/kalshi-arb/internal/storage"
	"github.com/mselser95/kalshi-arb/internal/telegram"
	"github.com/mselser95/kalshi-arb/pkg/cache"
)

// Config holds scheduler configuration.
type Config struct {
	Client   *kalshi.Client
	Detector *detector.Detector
	Executor *execution.Executor
	Limiter  *risk.Limiter
	Store    storage.Store
	Alerter  *telegram.Alerter

	// Catalog backs the series cache.
	Catalog cache.Cache

	Interval       time.Duration
	SeriesFilter   []string
	MinBrackets    int
	MaxBrackets    int
	SeriesCacheTTL time.Duration
	DryRun         bool

	Logger *zap.Logger
}

// Scheduler owns the scan loop and all per-cycle state. A single
// goroutine runs the loop; only LastCycle is read concurrently.
type Scheduler struct {
	client   *kalshi.Client
	detector *detector.Detector
	executor *execution.Executor
	limiter  *risk.Limiter
	store    storage.Store
	alerter  *telegram.Alerter
	series   *SeriesCache

	interval    time.Duration
	filter      map[string]struct{}
	minBrackets int
	maxBrackets int
	dryRun      bool

	logger *zap.Logger

	mu        sync.Mutex
	lastCycle CycleStats
	hasCycle  bool
}

// CycleStats is a snapshot of the most recent completed scan cycle,
// served by the status endpoint.
type CycleStats struct {
	Series        int           `json:"series"`
	Events        int           `json:"events"`
	Opportunities int           `json:"opportunities"`
	Trades        int           `json:"trades"`
	Duration      time.Duration `json:"duration_ns"`
	CompletedAt   time.Time     `json:"completed_at"`
}

// New creates a new scheduler. Executor and limiter may be nil only in
// dry-run, where neither is ever consulted.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Alerter == nil {
		return nil, fmt.Errorf("alerter cannot be nil")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog cache cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	if !cfg.DryRun {
		if cfg.Executor == nil {
			return nil, fmt.Errorf("executor cannot be nil outside dry-run")
		}
		if cfg.Limiter == nil {
			return nil, fmt.Errorf("risk limiter cannot be nil outside dry-run")
		}
	}

	filter := make(map[string]struct{}, len(cfg.SeriesFilter))
	for _, ticker := range cfg.SeriesFilter {
		filter[ticker] = struct{}{}
	}

	return &Scheduler{
		client:   cfg.Client,
		detector: cfg.Detector,
		executor: cfg.Executor,
		limiter:  cfg.Limiter,
		store:    cfg.Store,
		alerter:  cfg.Alerter,
		series: NewSeriesCache(SeriesCacheConfig{
			Lister: cfg.Client,
			Cache:  cfg.Catalog,
			TTL:    cfg.SeriesCacheTTL,
			Logger: cfg.Logger,
		}),
		interval:    cfg.Interval,
		filter:      filter,
		minBrackets: cfg.MinBrackets,
		maxBrackets: cfg.MaxBrackets,
		dryRun:      cfg.DryRun,
		logger:      cfg.Logger,
	}, nil
}

// LastCycle returns the stats of the most recent completed cycle and
// whether any cycle has completed yet.
func (s *Scheduler) LastCycle() (CycleStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCycle, s.hasCycle
}

// Run drives scan cycles until ctx is cancelled. A failed cycle is
// logged and the loop moves on to the next one; only cancellation
// stops it. Cycles never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler-started",
		zap.Duration("interval", s.interval),
		zap.Int("series-filter", len(s.filter)),
		zap.Int("min-brackets", s.minBrackets),
		zap.Int("max-brackets", s.maxBrackets),
		zap.Bool("dry-run", s.dryRun))

	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler-stopped")
			return
		}

		if err := s.scanCycle(ctx); err != nil {
			s.logger.Error("scan-cycle-failed", zap.Error(err))
		}

		if !s.sleepInterval(ctx) {
			s.logger.Info("scheduler-stopped")
			return
		}
	}
}

// RunOnce performs a single scan cycle. The scan subcommand uses it to
// sweep the catalog once and exit.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.scanCycle(ctx)
}

// sleepInterval waits out the configured interval in one-second steps,
// returning false as soon as ctx is cancelled.
func (s *Scheduler) sleepInterval(ctx context.Context) bool {
	remaining := s.interval
	for remaining > 0 {
		step := time.Second
		if remaining < step {
			step = remaining
		}

		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		remaining -= step
	}
	return true
}

// scanCycle walks the filtered series catalog once. A series whose
// events cannot be fetched is skipped; an error fetching the catalog
// itself fails the whole cycle since there is nothing to scan.
func (s *Scheduler) scanCycle(ctx context.Context) error {
	start := time.Now()
	cyclesTotal.Inc()

	catalog, err := s.series.Get(ctx)
	if err != nil {
		return fmt.Errorf("fetch series catalog: %w", err)
	}

	selected := s.filterSeries(catalog)
	stats := storage.ScanStats{Series: len(selected)}

	for _, series := range selected {
		events, err := s.client.GetEvents(ctx, series.Ticker)
		if err != nil {
			s.logger.Warn("series-events-fetch-failed",
				zap.String("series", series.Ticker),
				zap.Error(err))
			continue
		}

		for _, event := range events {
			s.scanEvent(ctx, event, &stats)
		}
	}

	if err := s.store.LogScan(ctx, stats); err != nil {
		s.logger.Warn("scan-append-failed", zap.Error(err))
	}

	elapsed := time.Since(start)
	cycleDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	s.lastCycle = CycleStats{
		Series:        stats.Series,
		Events:        stats.Events,
		Opportunities: stats.Opportunities,
		Trades:        stats.Trades,
		Duration:      elapsed,
		CompletedAt:   time.Now().UTC(),
	}
	s.hasCycle = true
	s.mu.Unlock()

	s.logger.Info("scan-cycle-complete",
		zap.Int("series", stats.Series),
		zap.Int("events", stats.Events),
		zap.Int("opportunities", stats.Opportunities),
		zap.Int("trades", stats.Trades),
		zap.Duration("elapsed", elapsed))

	return nil
}

// filterSeries applies the optional whitelist; empty means all.
func (s *Scheduler) filterSeries(catalog []kalshi.Series) []kalshi.Series {
	if len(s.filter) == 0 {
		return catalog
	}

	selected := make([]kalshi.Series, 0, len(s.filter))
	for _, series := range catalog {
		if _, ok := s.filter[series.Ticker]; ok {
			selected = append(selected, series)
		}
	}
	return selected
}

// scanEvent gates one event structurally, assembles its quotes and
// reacts to whatever the detector finds. An event counts as scanned
// once it passes the structural gates, even if its books then fail.
func (s *Scheduler) scanEvent(ctx context.Context, event kalshi.Event, stats *storage.ScanStats) {
	if !event.MutuallyExclusive {
		eventsSkippedTotal.WithLabelValues("not_mutually_exclusive").Inc()
		return
	}

	active := event.ActiveMarkets()
	if len(active) < s.minBrackets || len(active) > s.maxBrackets {
		eventsSkippedTotal.WithLabelValues("bracket_count").Inc()
		return
	}

	stats.Events++

	quotes, ok := s.collectQuotes(ctx, event.EventTicker, active)
	if !ok {
		return
	}

	for _, opp := range s.detector.Detect(event.EventTicker, event.Title, quotes) {
		stats.Opportunities++
		stats.Trades += s.handleOpportunity(ctx, opp)
	}
}

// collectQuotes fetches every active market's book sequentially, inside
// the client's read throttle. The whole event is abandoned on the first
// fetch failure or unpriceable book: a partial quote set would make the
// mutual-exclusivity arithmetic meaningless.
func (s *Scheduler) collectQuotes(ctx context.Context, eventTicker string, markets []kalshi.Market) ([]detector.BracketQuote, bool) {
	quotes := make([]detector.BracketQuote, 0, len(markets))
	for _, market := range markets {
		book, err := s.client.GetOrderbook(ctx, market.Ticker)
		if err != nil {
			eventsSkippedTotal.WithLabelValues("book_fetch_failed").Inc()
			s.logger.Warn("orderbook-fetch-failed",
				zap.String("event", eventTicker),
				zap.String("ticker", market.Ticker),
				zap.Error(err))
			return nil, false
		}

		quote, ok := s.detector.QuoteFromOrderbook(market, *book)
		if !ok {
			eventsSkippedTotal.WithLabelValues("empty_no_side").Inc()
			return nil, false
		}
		quotes = append(quotes, quote)
	}
	return quotes, true
}

// handleOpportunity takes one detected opportunity through the dry-run
// short-circuit, the risk gate and the executor. It returns the number
// of order legs that stood as a completed arb, which is what the scans
// sink counts as trades.
func (s *Scheduler) handleOpportunity(ctx context.Context, opp *detector.Opportunity) int {
	s.logger.Info("arbitrage-opportunity-detected",
		zap.String("event", opp.EventTicker),
		zap.String("direction", string(opp.Direction)),
		zap.Int("brackets", len(opp.Brackets)),
		zap.Int64("sum-cents", opp.SumCents),
		zap.Int64("net-profit-cents", opp.NetProfitCents),
		zap.String("roi-pct", opp.ROIPct.StringFixed(2)))

	if s.dryRun {
		s.logOpportunity(ctx, opp, false)
		return 0
	}

	if reason, ok := s.limiter.Allow(); !ok {
		s.logOpportunity(ctx, opp, false)
		status := s.limiter.Status()
		s.logger.Warn("execution-blocked",
			zap.String("event", opp.EventTicker),
			zap.String("reason", string(reason)),
			zap.Int("open-arbs", status.OpenArbs),
			zap.Int64("daily-pnl-cents", status.DailyPnLCents),
			zap.Int("daily-orders", status.DailyOrders))
		s.alerter.Send(ctx, fmt.Sprintf(
			"Execution blocked: %s\n%s\nopen_arbs=%d daily_pnl=%dc daily_orders=%d",
			reason, opp.String(), status.OpenArbs, status.DailyPnLCents, status.DailyOrders))
		return 0
	}

	s.logOpportunity(ctx, opp, true)

	res := s.executor.Execute(ctx, opp)
	s.limiter.AddOrders(res.PlacedOrders())
	s.logTrades(ctx, opp, res)

	switch {
	case res.FullyFilled():
		s.limiter.RecordFill(opp.NetProfitCents)
		s.logReconciliation(ctx, opp, res)
		return res.PlacedOrders()

	case res.TotalFailure():
		s.alerter.Send(ctx, fmt.Sprintf(
			"Execution failed: no leg of %s %s reached the book (%d api failures)",
			opp.Direction, opp.EventTicker, len(res.APIFailures)))
		return 0

	default:
		s.executor.CancelUnfilled(ctx, res)
		loss := res.WorstCaseLossCents()
		s.limiter.RecordLoss(loss)
		s.logReconciliation(ctx, opp, res)
		s.alerter.Send(ctx, fmt.Sprintf(
			"Partial fill on %s %s: filled=%d cancelled=%d failed=%d worst_case_loss=%dc",
			opp.Direction, opp.EventTicker,
			len(res.Filled), len(res.Resting)+len(res.Other), len(res.APIFailures), loss))
		return 0
	}
}

func (s *Scheduler) logOpportunity(ctx context.Context, opp *detector.Opportunity, executed bool) {
	if err := s.store.LogOpportunity(ctx, opp, executed); err != nil {
		s.logger.Warn("opportunity-append-failed",
			zap.String("event", opp.EventTicker),
			zap.Error(err))
	}
}

// logTrades records every leg the exchange accepted, whatever its status.
func (s *Scheduler) logTrades(ctx context.Context, opp *detector.Opportunity, res *execution.Result) {
	for _, leg := range res.PlacedLegs() {
		if err := s.store.LogTrade(ctx, opp, leg.Ticker, leg.Order, leg.Order.EffectiveCount()); err != nil {
			s.logger.Warn("trade-append-failed",
				zap.String("event", opp.EventTicker),
				zap.String("ticker", leg.Ticker),
				zap.Error(err))
		}
	}
}

func (s *Scheduler) logReconciliation(ctx context.Context, opp *detector.Opportunity, res *execution.Result) {
	rec := execution.Reconcile(opp, res)
	rec.Log(s.logger)
	if err := s.store.LogReconciliation(ctx, rec); err != nil {
		s.logger.Warn("reconciliation-append-failed",
			zap.String("event", opp.EventTicker),
			zap.Error(err))
	}
}
