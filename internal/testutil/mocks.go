// Package testutil provides a fake exchange API, an in-memory sink and
// fixture builders shared by integration-style tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/internal/storage"
)

// MockKalshiAPI is a mock HTTP server simulating the exchange REST API:
// the series catalog, per-series open events with nested markets,
// per-market books and the portfolio order endpoints. Responses are
// single-page (empty cursor).
type MockKalshiAPI struct {
	*httptest.Server

	mu            sync.Mutex
	series        []kalshi.Series
	failSeries    bool
	events        map[string][]kalshi.Event
	orderbooks    map[string]kalshi.Orderbook
	failBooks     map[string]bool
	orderStatuses map[string]string
	failOrders    map[string]bool
	orders        []kalshi.CreateOrderRequest
	cancelled     []string
	writeRequests int
}

// NewMockKalshiAPI creates an empty mock exchange. Populate it with the
// Set* methods before pointing a client at m.URL.
func NewMockKalshiAPI() *MockKalshiAPI {
	mock := &MockKalshiAPI{
		events:        make(map[string][]kalshi.Event),
		orderbooks:    make(map[string]kalshi.Orderbook),
		failBooks:     make(map[string]bool),
		orderStatuses: make(map[string]string),
		failOrders:    make(map[string]bool),
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// SetSeries replaces the series catalog.
func (m *MockKalshiAPI) SetSeries(series ...kalshi.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = series
}

// FailSeries makes GET /series return 503 when fail is true.
func (m *MockKalshiAPI) FailSeries(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSeries = fail
}

// SetEvents replaces the open events of one series.
func (m *MockKalshiAPI) SetEvents(seriesTicker string, events ...kalshi.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[seriesTicker] = events
}

// SetOrderbook replaces one market's book.
func (m *MockKalshiAPI) SetOrderbook(ticker string, book kalshi.Orderbook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderbooks[ticker] = book
}

// FailOrderbook makes the book fetch for ticker return 503.
func (m *MockKalshiAPI) FailOrderbook(ticker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBooks[ticker] = true
}

// SetOrderStatus sets the status returned when an order for ticker is
// created; unset tickers come back "executed".
func (m *MockKalshiAPI) SetOrderStatus(ticker, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderStatuses[ticker] = status
}

// FailOrder makes order creation for ticker return 400.
func (m *MockKalshiAPI) FailOrder(ticker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOrders[ticker] = true
}

// Orders returns every order creation request received.
func (m *MockKalshiAPI) Orders() []kalshi.CreateOrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]kalshi.CreateOrderRequest, len(m.orders))
	copy(orders, m.orders)
	return orders
}

// Cancelled returns the order ids of every cancel request received.
func (m *MockKalshiAPI) Cancelled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cancelled := make([]string, len(m.cancelled))
	copy(cancelled, m.cancelled)
	return cancelled
}

// WriteRequests counts POSTs and DELETEs received, for asserting that
// dry-run never writes.
func (m *MockKalshiAPI) WriteRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeRequests
}

func (m *MockKalshiAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/series":
		if m.failSeries {
			http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"series": m.series, "cursor": ""})

	case r.Method == http.MethodGet && r.URL.Path == "/events":
		ticker := r.URL.Query().Get("series_ticker")
		writeJSON(w, http.StatusOK, map[string]any{"events": m.events[ticker], "cursor": ""})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/markets/") && strings.HasSuffix(r.URL.Path, "/orderbook"):
		ticker := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/markets/"), "/orderbook")
		if m.failBooks[ticker] {
			http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orderbook": m.orderbooks[ticker]})

	case r.Method == http.MethodPost && r.URL.Path == "/portfolio/orders":
		m.writeRequests++
		var req kalshi.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}
		m.orders = append(m.orders, req)

		if m.failOrders[req.Ticker] {
			http.Error(w, `{"error":"insufficient balance"}`, http.StatusBadRequest)
			return
		}

		status := m.orderStatuses[req.Ticker]
		if status == "" {
			status = kalshi.OrderStatusExecuted
		}
		order := kalshi.Order{
			OrderID:  "ord-" + req.Ticker,
			Ticker:   req.Ticker,
			Status:   status,
			Action:   req.Action,
			Side:     req.Side,
			Type:     req.Type,
			YesPrice: req.YesPrice,
			Count:    kalshi.Int64Ptr(req.Count),
		}
		if status == kalshi.OrderStatusExecuted {
			order.FillCount = kalshi.Int64Ptr(req.Count)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/portfolio/orders/"):
		m.writeRequests++
		id := strings.TrimPrefix(r.URL.Path, "/portfolio/orders/")
		m.cancelled = append(m.cancelled, id)
		writeJSON(w, http.StatusOK, map[string]any{
			"order": map[string]any{"order_id": id, "status": "canceled"},
		})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// LoggedOpportunity is one LogOpportunity call captured by MemoryStore.
type LoggedOpportunity struct {
	Opportunity *detector.Opportunity
	Executed    bool
}

// LoggedTrade is one LogTrade call captured by MemoryStore.
type LoggedTrade struct {
	EventTicker string
	Ticker      string
	Order       *kalshi.Order
	Count       int64
}

// MemoryStore is an in-memory Store capturing everything written to it.
type MemoryStore struct {
	mu              sync.Mutex
	opportunities   []LoggedOpportunity
	trades          []LoggedTrade
	scans           []storage.ScanStats
	reconciliations []*execution.Reconciliation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LogOpportunity captures a detected opportunity.
func (m *MemoryStore) LogOpportunity(_ context.Context, opp *detector.Opportunity, executed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opportunities = append(m.opportunities, LoggedOpportunity{Opportunity: opp, Executed: executed})
	return nil
}

// LogTrade captures a placed order leg.
func (m *MemoryStore) LogTrade(_ context.Context, opp *detector.Opportunity, ticker string, order *kalshi.Order, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, LoggedTrade{
		EventTicker: opp.EventTicker,
		Ticker:      ticker,
		Order:       order,
		Count:       count,
	})
	return nil
}

// LogScan captures a cycle summary.
func (m *MemoryStore) LogScan(_ context.Context, stats storage.ScanStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, stats)
	return nil
}

// LogReconciliation captures a reconciliation.
func (m *MemoryStore) LogReconciliation(_ context.Context, rec *execution.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciliations = append(m.reconciliations, rec)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// Opportunities returns the captured opportunity rows.
func (m *MemoryStore) Opportunities() []LoggedOpportunity {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]LoggedOpportunity, len(m.opportunities))
	copy(rows, m.opportunities)
	return rows
}

// Trades returns the captured trade rows.
func (m *MemoryStore) Trades() []LoggedTrade {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]LoggedTrade, len(m.trades))
	copy(rows, m.trades)
	return rows
}

// Scans returns the captured cycle summaries.
func (m *MemoryStore) Scans() []storage.ScanStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]storage.ScanStats, len(m.scans))
	copy(rows, m.scans)
	return rows
}

// Reconciliations returns the captured reconciliations.
func (m *MemoryStore) Reconciliations() []*execution.Reconciliation {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]*execution.Reconciliation, len(m.reconciliations))
	copy(rows, m.reconciliations)
	return rows
}
