package detector

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the side of the book a Dutch book takes.
type Direction string

const (
	// DirectionLong buys YES on every bracket; the single winning bracket
	// pays out 100 cents.
	DirectionLong Direction = "LONG"
	// DirectionShort sells YES on every bracket; the single winning
	// bracket is a 100 cent liability.
	DirectionShort Direction = "SHORT"
)

// BracketQuote is the top-of-book view of one bracket market.
type BracketQuote struct {
	Ticker     string
	Title      string
	YesAsk     int64 // cents to buy one YES contract at the top of book
	YesBid     int64 // cents received selling one YES contract, 0 when the yes side is empty
	DepthAtNo  int64 // contracts resting at the best no price
	DepthAtYes int64 // contracts resting at the best yes price
}

// Opportunity is a Dutch book detected across every bracket of a
// mutually-exclusive event. It is consumed within the scan cycle that
// produced it and never persisted across cycles.
type Opportunity struct {
	ID               string
	EventTicker      string
	EventTitle       string
	Direction        Direction
	Brackets         []BracketQuote
	SumCents         int64
	TotalFeesCents   int64
	GrossProfitCents int64
	NetProfitCents   int64
	ROIPct           decimal.Decimal
	DetectedAt       time.Time
}

// newOpportunity stamps identity and detection time onto a computed book.
func newOpportunity(
	eventTicker string,
	eventTitle string,
	direction Direction,
	brackets []BracketQuote,
	sumCents int64,
	totalFees int64,
	grossProfit int64,
	netProfit int64,
	roi decimal.Decimal,
) *Opportunity {
	quotes := make([]BracketQuote, len(brackets))
	copy(quotes, brackets)

	return &Opportunity{
		ID:               uuid.New().String(),
		EventTicker:      eventTicker,
		EventTitle:       eventTitle,
		Direction:        direction,
		Brackets:         quotes,
		SumCents:         sumCents,
		TotalFeesCents:   totalFees,
		GrossProfitCents: grossProfit,
		NetProfitCents:   netProfit,
		ROIPct:           roi,
		DetectedAt:       time.Now(),
	}
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] Event=%s Dir=%s Brackets=%d Sum=%dc Fees=%dc Net=%dc ROI=%s%%",
		o.ID[:8],
		o.EventTicker,
		o.Direction,
		len(o.Brackets),
		o.SumCents,
		o.TotalFeesCents,
		o.NetProfitCents,
		o.ROIPct.StringFixed(2),
	)
}
