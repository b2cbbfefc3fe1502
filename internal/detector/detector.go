// Package detector derives top-of-book quotes from bracket orderbooks and
// evaluates both Dutch-book directions over the brackets of a
// mutually-exclusive event.
package detector

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// Config holds detector thresholds.
type Config struct {
	MinNetProfitCents int64
	MinROIPct         float64
	PositionSize      int64
	Logger            *zap.Logger
}

// Detector evaluates bracket quotes for Dutch-book arbitrage.
type Detector struct {
	config Config
	minROI decimal.Decimal
	logger *zap.Logger
}

// New creates a new detector.
func New(cfg Config) *Detector {
	return &Detector{
		config: cfg,
		minROI: decimal.NewFromFloat(cfg.MinROIPct),
		logger: cfg.Logger,
	}
}

// QuoteFromOrderbook derives the bracket quote for one market.
//
// The exchange nominally sorts each book side descending by price, but
// that ordering is not trusted: best prices are computed by maximum over
// the levels and depths by summing quantities at that price, so the
// result is invariant under any permutation of the level lists. Returns
// false when the no side is empty, in which case the yes ask cannot be
// priced and the whole event is skipped upstream.
func (d *Detector) QuoteFromOrderbook(market kalshi.Market, book kalshi.Orderbook) (BracketQuote, bool) {
	if len(book.No) == 0 {
		return BracketQuote{}, false
	}

	bestNo, depthAtNo := bestLevel(book.No)
	if book.No[0].Price != bestNo {
		d.logger.Debug("no-side-unsorted",
			zap.String("market-ticker", market.Ticker),
			zap.Int64("first-price", book.No[0].Price),
			zap.Int64("best-price", bestNo))
	}

	quote := BracketQuote{
		Ticker:    market.Ticker,
		Title:     market.Title,
		YesAsk:    100 - bestNo,
		DepthAtNo: depthAtNo,
	}

	if len(book.Yes) > 0 {
		bestYes, depthAtYes := bestLevel(book.Yes)
		if book.Yes[0].Price != bestYes {
			d.logger.Debug("yes-side-unsorted",
				zap.String("market-ticker", market.Ticker),
				zap.Int64("first-price", book.Yes[0].Price),
				zap.Int64("best-price", bestYes))
		}
		quote.YesBid = bestYes
		quote.DepthAtYes = depthAtYes
	}

	return quote, true
}

// bestLevel returns the maximum price across levels and the total
// quantity resting at that price, summing duplicate levels.
func bestLevel(levels []kalshi.PriceLevel) (price, depth int64) {
	for _, lvl := range levels {
		switch {
		case lvl.Price > price:
			price = lvl.Price
			depth = lvl.Quantity
		case lvl.Price == price:
			depth += lvl.Quantity
		}
	}
	return price, depth
}

// Detect evaluates both directions over the bracket quotes of one
// mutually-exclusive event. The directions are independent: LONG takes
// the no side of every bracket and gates on depth_at_no, SHORT takes
// the yes side and gates on depth_at_yes, so an empty side blocks only
// its own direction. Zero, one, or both directions may be returned.
func (d *Detector) Detect(eventTicker, eventTitle string, quotes []BracketQuote) []*Opportunity {
	EventsEvaluatedTotal.Inc()

	opps := make([]*Opportunity, 0, 2)
	if opp, ok := d.evaluateLong(eventTicker, eventTitle, quotes); ok {
		opps = append(opps, opp)
	}
	if opp, ok := d.evaluateShort(eventTicker, eventTitle, quotes); ok {
		opps = append(opps, opp)
	}
	return opps
}

// evaluateLong prices buying YES on every bracket. Exactly one bracket
// resolves YES and pays 100 cents per contract.
func (d *Detector) evaluateLong(eventTicker, eventTitle string, quotes []BracketQuote) (*Opportunity, bool) {
	size := d.config.PositionSize

	var sum, fees int64
	var minDepth int64
	for i, q := range quotes {
		sum += q.YesAsk
		fees += TakerFeeCents(size, q.YesAsk)
		if i == 0 || q.DepthAtNo < minDepth {
			minDepth = q.DepthAtNo
		}
	}

	gross := (100 - sum) * size
	net := gross - fees
	cost := sum*size + fees

	roi := decimal.Zero
	if cost > 0 {
		roi = decimal.NewFromInt(net * 100).Div(decimal.NewFromInt(cost))
	}

	d.logger.Debug("evaluated-long",
		zap.String("event", eventTicker),
		zap.Int("brackets", len(quotes)),
		zap.Int64("sum-cents", sum),
		zap.Int64("total-fees", fees),
		zap.Int64("net-profit", net),
		zap.String("roi-pct", roi.StringFixed(4)),
		zap.Int64("min-depth", minDepth))

	if !d.passesGates(DirectionLong, net, roi, minDepth) {
		return nil, false
	}

	OpportunitiesDetectedTotal.WithLabelValues(string(DirectionLong)).Inc()
	NetProfitCents.Observe(float64(net))

	return newOpportunity(eventTicker, eventTitle, DirectionLong, quotes, sum, fees, gross, net, roi), true
}

// evaluateShort prices selling YES on every bracket. Exactly one bracket
// resolves YES and costs 100 cents per contract; the fixed liability is
// the cost basis for ROI.
func (d *Detector) evaluateShort(eventTicker, eventTitle string, quotes []BracketQuote) (*Opportunity, bool) {
	size := d.config.PositionSize

	var sum, fees int64
	var minDepth int64
	for i, q := range quotes {
		sum += q.YesBid
		fees += TakerFeeCents(size, q.YesBid)
		if i == 0 || q.DepthAtYes < minDepth {
			minDepth = q.DepthAtYes
		}
	}

	gross := (sum - 100) * size
	net := gross - fees
	cost := 100 * size

	roi := decimal.Zero
	if cost > 0 {
		roi = decimal.NewFromInt(net * 100).Div(decimal.NewFromInt(cost))
	}

	d.logger.Debug("evaluated-short",
		zap.String("event", eventTicker),
		zap.Int("brackets", len(quotes)),
		zap.Int64("sum-cents", sum),
		zap.Int64("total-fees", fees),
		zap.Int64("net-profit", net),
		zap.String("roi-pct", roi.StringFixed(4)),
		zap.Int64("min-depth", minDepth))

	if !d.passesGates(DirectionShort, net, roi, minDepth) {
		return nil, false
	}

	OpportunitiesDetectedTotal.WithLabelValues(string(DirectionShort)).Inc()
	NetProfitCents.Observe(float64(net))

	return newOpportunity(eventTicker, eventTitle, DirectionShort, quotes, sum, fees, gross, net, roi), true
}

// passesGates applies the three emission gates for one direction.
func (d *Detector) passesGates(dir Direction, net int64, roi decimal.Decimal, minDepth int64) bool {
	if net < d.config.MinNetProfitCents {
		OpportunitiesRejectedTotal.WithLabelValues(string(dir), "below_min_profit").Inc()
		return false
	}
	if roi.LessThan(d.minROI) {
		OpportunitiesRejectedTotal.WithLabelValues(string(dir), "below_min_roi").Inc()
		return false
	}
	if minDepth < d.config.PositionSize {
		OpportunitiesRejectedTotal.WithLabelValues(string(dir), "insufficient_depth").Inc()
		return false
	}
	return true
}
