package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// WriteTestRSAKey writes a throwaway PKCS#1 PEM signing key under dir
// and returns its path.
func WriteTestRSAKey(t *testing.T, dir string) string {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	path := filepath.Join(dir, "kalshi-test-key.pem")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

// NewTestClient builds an exchange client against baseURL with a
// throwaway key and a 1 ms read delay so tests spend no time throttled.
func NewTestClient(t *testing.T, baseURL string) *kalshi.Client {
	t.Helper()

	signer, err := kalshi.NewSigner(WriteTestRSAKey(t, t.TempDir()), "test-key-id")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	client, err := kalshi.NewClient(&kalshi.ClientConfig{
		BaseURL:   baseURL,
		Signer:    signer,
		ReadDelay: time.Millisecond,
		Logger:    zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// BracketMarket returns an active market for one bracket ticker.
func BracketMarket(ticker string) kalshi.Market {
	return kalshi.Market{
		Ticker: ticker,
		Title:  "Bracket " + ticker,
		Status: kalshi.MarketStatusActive,
	}
}

// BracketEvent assembles a mutually-exclusive event over markets.
func BracketEvent(eventTicker string, markets ...kalshi.Market) kalshi.Event {
	return kalshi.Event{
		EventTicker:       eventTicker,
		Title:             "Event " + eventTicker,
		MutuallyExclusive: true,
		Markets:           markets,
	}
}

// Book builds a one-level book per side. The YES ask is implied by the
// best NO price (100 − yesAsk) with noDepth contracts behind it; a zero
// yesBid leaves the YES side empty.
func Book(yesAsk, noDepth, yesBid, yesDepth int64) kalshi.Orderbook {
	book := kalshi.Orderbook{
		No: []kalshi.PriceLevel{{Price: 100 - yesAsk, Quantity: noDepth}},
	}
	if yesBid > 0 {
		book.Yes = []kalshi.PriceLevel{{Price: yesBid, Quantity: yesDepth}}
	}
	return book
}

// SeedLongArb populates the mock with one series holding one
// three-bracket event whose asks sum to 90¢: a profitable LONG for any
// position size up to the 50-contract depth. The bids sum to 84¢ so no
// SHORT is emitted. Returns the bracket tickers.
func SeedLongArb(mock *MockKalshiAPI, seriesTicker, eventTicker string) []string {
	tickers := []string{eventTicker + "-B1", eventTicker + "-B2", eventTicker + "-B3"}

	mock.SetSeries(kalshi.Series{Ticker: seriesTicker, Title: "Series " + seriesTicker})
	mock.SetEvents(seriesTicker, BracketEvent(eventTicker,
		BracketMarket(tickers[0]),
		BracketMarket(tickers[1]),
		BracketMarket(tickers[2]),
	))
	mock.SetOrderbook(tickers[0], Book(20, 50, 18, 50))
	mock.SetOrderbook(tickers[1], Book(30, 50, 28, 50))
	mock.SetOrderbook(tickers[2], Book(40, 50, 38, 50))

	return tickers
}
