package detector

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

func newTestDetector(t *testing.T, cfg Config) *Detector {
	t.Helper()
	cfg.Logger = zaptest.NewLogger(t)
	return New(cfg)
}

// assertAccounting checks the identity every emitted opportunity must
// satisfy: gross derives from the price sum and net = gross - fees.
func assertAccounting(t *testing.T, opp *Opportunity, size int64) {
	t.Helper()

	var wantGross int64
	switch opp.Direction {
	case DirectionLong:
		wantGross = (100 - opp.SumCents) * size
	case DirectionShort:
		wantGross = (opp.SumCents - 100) * size
	default:
		t.Fatalf("unknown direction %q", opp.Direction)
	}

	if opp.GrossProfitCents != wantGross {
		t.Errorf("%s gross = %d, want %d from sum %d and size %d",
			opp.Direction, opp.GrossProfitCents, wantGross, opp.SumCents, size)
	}
	if got := opp.GrossProfitCents - opp.TotalFeesCents; opp.NetProfitCents != got {
		t.Errorf("net = %d, want gross - fees = %d", opp.NetProfitCents, got)
	}
}

func TestQuoteFromOrderbook_UnsortedBook(t *testing.T) {
	d := newTestDetector(t, Config{PositionSize: 5})

	book := kalshi.Orderbook{
		No:  []kalshi.PriceLevel{{Price: 30, Quantity: 5}, {Price: 50, Quantity: 20}, {Price: 40, Quantity: 10}},
		Yes: []kalshi.PriceLevel{{Price: 10, Quantity: 3}, {Price: 25, Quantity: 15}, {Price: 20, Quantity: 8}},
	}

	quote, ok := d.QuoteFromOrderbook(kalshi.Market{Ticker: "KXHIGHNY-B1"}, book)
	if !ok {
		t.Fatal("expected a quote from a book with a populated no side")
	}

	if quote.YesAsk != 50 {
		t.Errorf("yes ask = %d, want 50", quote.YesAsk)
	}
	if quote.DepthAtNo != 20 {
		t.Errorf("depth at no = %d, want 20", quote.DepthAtNo)
	}
	if quote.YesBid != 25 {
		t.Errorf("yes bid = %d, want 25", quote.YesBid)
	}
	if quote.DepthAtYes != 15 {
		t.Errorf("depth at yes = %d, want 15", quote.DepthAtYes)
	}
}

func TestQuoteFromOrderbook_EmptySides(t *testing.T) {
	d := newTestDetector(t, Config{PositionSize: 5})
	market := kalshi.Market{Ticker: "KXHIGHNY-B2"}

	t.Run("empty-no-side-yields-no-quote", func(t *testing.T) {
		book := kalshi.Orderbook{Yes: []kalshi.PriceLevel{{Price: 40, Quantity: 10}}}
		if _, ok := d.QuoteFromOrderbook(market, book); ok {
			t.Error("expected no quote when the no side is empty")
		}
	})

	t.Run("empty-yes-side-zeroes-bid", func(t *testing.T) {
		book := kalshi.Orderbook{No: []kalshi.PriceLevel{{Price: 60, Quantity: 5}}}
		quote, ok := d.QuoteFromOrderbook(market, book)
		if !ok {
			t.Fatal("expected a quote when only the yes side is empty")
		}
		if quote.YesAsk != 40 || quote.DepthAtNo != 5 {
			t.Errorf("ask/depth = %d/%d, want 40/5", quote.YesAsk, quote.DepthAtNo)
		}
		if quote.YesBid != 0 || quote.DepthAtYes != 0 {
			t.Errorf("bid/depth = %d/%d, want 0/0", quote.YesBid, quote.DepthAtYes)
		}
	})

	t.Run("both-sides-empty", func(t *testing.T) {
		if _, ok := d.QuoteFromOrderbook(market, kalshi.Orderbook{}); ok {
			t.Error("expected no quote from an empty book")
		}
	})
}

func TestQuoteFromOrderbook_DuplicateBestLevels(t *testing.T) {
	d := newTestDetector(t, Config{PositionSize: 5})

	book := kalshi.Orderbook{
		No:  []kalshi.PriceLevel{{Price: 50, Quantity: 5}, {Price: 50, Quantity: 7}, {Price: 40, Quantity: 9}},
		Yes: []kalshi.PriceLevel{{Price: 30, Quantity: 2}, {Price: 30, Quantity: 4}},
	}

	quote, ok := d.QuoteFromOrderbook(kalshi.Market{Ticker: "KXHIGHNY-B3"}, book)
	if !ok {
		t.Fatal("expected a quote")
	}
	if quote.DepthAtNo != 12 {
		t.Errorf("depth at no = %d, want 12 (duplicate best levels summed)", quote.DepthAtNo)
	}
	if quote.DepthAtYes != 6 {
		t.Errorf("depth at yes = %d, want 6 (duplicate best levels summed)", quote.DepthAtYes)
	}
}

func TestQuoteFromOrderbook_ShuffleInvariant(t *testing.T) {
	d := newTestDetector(t, Config{PositionSize: 5})
	market := kalshi.Market{Ticker: "KXHIGHNY-B4"}

	book := kalshi.Orderbook{
		No:  []kalshi.PriceLevel{{Price: 30, Quantity: 5}, {Price: 50, Quantity: 20}, {Price: 50, Quantity: 3}, {Price: 40, Quantity: 10}},
		Yes: []kalshi.PriceLevel{{Price: 10, Quantity: 3}, {Price: 25, Quantity: 15}, {Price: 25, Quantity: 1}, {Price: 20, Quantity: 8}},
	}

	want, ok := d.QuoteFromOrderbook(market, book)
	if !ok {
		t.Fatal("expected a quote")
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		rng.Shuffle(len(book.No), func(a, b int) { book.No[a], book.No[b] = book.No[b], book.No[a] })
		rng.Shuffle(len(book.Yes), func(a, b int) { book.Yes[a], book.Yes[b] = book.Yes[b], book.Yes[a] })

		got, ok := d.QuoteFromOrderbook(market, book)
		if !ok {
			t.Fatal("expected a quote after shuffling")
		}
		if got != want {
			t.Fatalf("shuffle %d changed the quote: got %+v, want %+v", i, got, want)
		}
	}
}

func TestDetect_NotProfitable(t *testing.T) {
	d := newTestDetector(t, Config{
		MinNetProfitCents: 10,
		MinROIPct:         1.0,
		PositionSize:      5,
	})

	// sum = 95, gross = 25, fees = 4+7+9+6 = 26, net = -1
	quotes := []BracketQuote{
		{Ticker: "B1", YesAsk: 10, DepthAtNo: 10},
		{Ticker: "B2", YesAsk: 25, DepthAtNo: 10},
		{Ticker: "B3", YesAsk: 40, DepthAtNo: 10},
		{Ticker: "B4", YesAsk: 20, DepthAtNo: 10},
	}

	opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
	if len(opps) != 0 {
		t.Errorf("expected no opportunities, got %d", len(opps))
	}
}

func TestDetect_LongProfitable(t *testing.T) {
	d := newTestDetector(t, Config{
		MinNetProfitCents: 10,
		MinROIPct:         1.0,
		PositionSize:      5,
	})

	// sum = 85, gross = 75, fees = 6+7+9 = 22, net = 53,
	// roi = 5300/447 ~ 11.86%
	quotes := []BracketQuote{
		{Ticker: "B1", YesAsk: 20, DepthAtNo: 10},
		{Ticker: "B2", YesAsk: 25, DepthAtNo: 10},
		{Ticker: "B3", YesAsk: 40, DepthAtNo: 10},
	}

	opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
	if len(opps) != 1 {
		t.Fatalf("expected exactly one opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.Direction != DirectionLong {
		t.Errorf("direction = %s, want %s", opp.Direction, DirectionLong)
	}
	if opp.SumCents != 85 {
		t.Errorf("sum = %d, want 85", opp.SumCents)
	}
	if opp.TotalFeesCents != 22 {
		t.Errorf("fees = %d, want 22", opp.TotalFeesCents)
	}
	if opp.NetProfitCents != 53 {
		t.Errorf("net = %d, want 53", opp.NetProfitCents)
	}
	if got := opp.ROIPct.StringFixed(2); got != "11.86" {
		t.Errorf("roi = %s, want 11.86", got)
	}
	if len(opp.Brackets) != 3 {
		t.Errorf("brackets = %d, want 3", len(opp.Brackets))
	}
	assertAccounting(t, opp, 5)
}

func TestDetect_ShortProfitable(t *testing.T) {
	d := newTestDetector(t, Config{
		MinNetProfitCents: 10,
		MinROIPct:         1.0,
		PositionSize:      5,
	})

	// sum = 180, gross = 400, fees = 3*9 = 27, net = 373,
	// roi = 37300/500 = 74.6% against the fixed 100c liability
	quotes := []BracketQuote{
		{Ticker: "B1", YesAsk: 90, YesBid: 60, DepthAtNo: 10, DepthAtYes: 10},
		{Ticker: "B2", YesAsk: 90, YesBid: 60, DepthAtNo: 10, DepthAtYes: 10},
		{Ticker: "B3", YesAsk: 90, YesBid: 60, DepthAtNo: 10, DepthAtYes: 10},
	}

	opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
	if len(opps) != 1 {
		t.Fatalf("expected exactly one opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.Direction != DirectionShort {
		t.Errorf("direction = %s, want %s", opp.Direction, DirectionShort)
	}
	if opp.SumCents != 180 {
		t.Errorf("sum = %d, want 180", opp.SumCents)
	}
	if opp.NetProfitCents != 373 {
		t.Errorf("net = %d, want 373", opp.NetProfitCents)
	}
	if got := opp.ROIPct.StringFixed(1); got != "74.6" {
		t.Errorf("roi = %s, want 74.6", got)
	}
	assertAccounting(t, opp, 5)
}

func TestDetect_GateIndependence(t *testing.T) {
	cfg := Config{
		MinNetProfitCents: 10,
		MinROIPct:         1.0,
		PositionSize:      5,
	}

	t.Run("long-emits-with-empty-yes-side", func(t *testing.T) {
		d := newTestDetector(t, cfg)

		// SHORT would clear the profit gates (net 373) but has no yes
		// depth to sell into.
		quotes := []BracketQuote{
			{Ticker: "B1", YesAsk: 20, YesBid: 60, DepthAtNo: 10, DepthAtYes: 0},
			{Ticker: "B2", YesAsk: 25, YesBid: 60, DepthAtNo: 10, DepthAtYes: 0},
			{Ticker: "B3", YesAsk: 40, YesBid: 60, DepthAtNo: 10, DepthAtYes: 0},
		}

		opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
		if len(opps) != 1 {
			t.Fatalf("expected exactly one opportunity, got %d", len(opps))
		}
		if opps[0].Direction != DirectionLong {
			t.Errorf("direction = %s, want %s", opps[0].Direction, DirectionLong)
		}
		assertAccounting(t, opps[0], 5)
	})

	t.Run("short-emits-with-empty-no-depth", func(t *testing.T) {
		d := newTestDetector(t, cfg)

		// LONG would clear the profit gates (net 53) but has no no
		// depth to buy against.
		quotes := []BracketQuote{
			{Ticker: "B1", YesAsk: 20, YesBid: 60, DepthAtNo: 0, DepthAtYes: 10},
			{Ticker: "B2", YesAsk: 25, YesBid: 60, DepthAtNo: 0, DepthAtYes: 10},
			{Ticker: "B3", YesAsk: 40, YesBid: 60, DepthAtNo: 0, DepthAtYes: 10},
		}

		opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
		if len(opps) != 1 {
			t.Fatalf("expected exactly one opportunity, got %d", len(opps))
		}
		if opps[0].Direction != DirectionShort {
			t.Errorf("direction = %s, want %s", opps[0].Direction, DirectionShort)
		}
		assertAccounting(t, opps[0], 5)
	})
}

func TestDetect_Gates(t *testing.T) {
	// Profitable LONG baseline: sum 85, net 53, roi ~11.86%, depth 10.
	quotes := []BracketQuote{
		{Ticker: "B1", YesAsk: 20, DepthAtNo: 10},
		{Ticker: "B2", YesAsk: 25, DepthAtNo: 10},
		{Ticker: "B3", YesAsk: 40, DepthAtNo: 10},
	}

	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"all-gates-pass", Config{MinNetProfitCents: 10, MinROIPct: 1.0, PositionSize: 5}, 1},
		{"profit-floor-blocks", Config{MinNetProfitCents: 54, MinROIPct: 1.0, PositionSize: 5}, 0},
		{"roi-floor-blocks", Config{MinNetProfitCents: 10, MinROIPct: 15.0, PositionSize: 5}, 0},
		{"depth-gate-blocks", Config{MinNetProfitCents: 10, MinROIPct: 1.0, PositionSize: 11}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(t, tt.cfg)
			opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
			if len(opps) != tt.want {
				t.Errorf("expected %d opportunities, got %d", tt.want, len(opps))
			}
		})
	}
}

func TestDetect_ROIExactAtFloor(t *testing.T) {
	// roi is carried as a decimal so a floor set exactly at the computed
	// value must admit the opportunity rather than drift below it. The
	// short side has a fixed 500c liability here, so roi = 37300/500 is
	// exactly 74.6.
	quotes := []BracketQuote{
		{Ticker: "B1", YesBid: 60, DepthAtYes: 10},
		{Ticker: "B2", YesBid: 60, DepthAtYes: 10},
		{Ticker: "B3", YesBid: 60, DepthAtYes: 10},
	}

	d := newTestDetector(t, Config{MinNetProfitCents: 10, MinROIPct: 74.6, PositionSize: 5})
	opps := d.Detect("KXHIGHNY-25AUG25", "Highest temperature in NYC", quotes)
	if len(opps) != 1 {
		t.Fatalf("expected the at-floor opportunity to emit, got %d", len(opps))
	}
	if !opps[0].ROIPct.Equal(decimal.NewFromFloat(74.6)) {
		t.Errorf("roi = %s, want exactly 74.6", opps[0].ROIPct)
	}
}
