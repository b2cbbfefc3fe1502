package detector

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTestOpportunity builds a three-bracket opportunity with economics
// consistent for a ten-contract position. Test helper living here rather
// than in testutil to avoid import cycles.
func CreateTestOpportunity(eventTicker string, direction Direction) *Opportunity {
	if direction == DirectionShort {
		return &Opportunity{
			ID:          "test-opp-" + eventTicker,
			EventTicker: eventTicker,
			EventTitle:  "Test event " + eventTicker,
			Direction:   DirectionShort,
			Brackets: []BracketQuote{
				{Ticker: eventTicker + "-B1", Title: "Bracket 1", YesAsk: 42, YesBid: 40, DepthAtNo: 50, DepthAtYes: 50},
				{Ticker: eventTicker + "-B2", Title: "Bracket 2", YesAsk: 40, YesBid: 38, DepthAtNo: 50, DepthAtYes: 50},
				{Ticker: eventTicker + "-B3", Title: "Bracket 3", YesAsk: 34, YesBid: 32, DepthAtNo: 50, DepthAtYes: 50},
			},
			SumCents:         110,
			TotalFeesCents:   50,
			GrossProfitCents: 100,
			NetProfitCents:   50,
			ROIPct:           decimal.NewFromInt(5000).Div(decimal.NewFromInt(1000)),
			DetectedAt:       time.Now(),
		}
	}

	return &Opportunity{
		ID:          "test-opp-" + eventTicker,
		EventTicker: eventTicker,
		EventTitle:  "Test event " + eventTicker,
		Direction:   DirectionLong,
		Brackets: []BracketQuote{
			{Ticker: eventTicker + "-B1", Title: "Bracket 1", YesAsk: 20, YesBid: 18, DepthAtNo: 50, DepthAtYes: 50},
			{Ticker: eventTicker + "-B2", Title: "Bracket 2", YesAsk: 30, YesBid: 28, DepthAtNo: 50, DepthAtYes: 50},
			{Ticker: eventTicker + "-B3", Title: "Bracket 3", YesAsk: 40, YesBid: 38, DepthAtNo: 50, DepthAtYes: 50},
		},
		SumCents:         90,
		TotalFeesCents:   44,
		GrossProfitCents: 100,
		NetProfitCents:   56,
		ROIPct:           decimal.NewFromInt(5600).Div(decimal.NewFromInt(944)),
		DetectedAt:       time.Now(),
	}
}
