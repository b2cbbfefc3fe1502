package kalshi

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Order actions, sides and statuses as they appear on the wire.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"

	SideYes = "yes"
	SideNo  = "no"

	OrderTypeLimit = "limit"

	OrderStatusExecuted = "executed"
	OrderStatusResting  = "resting"

	MarketStatusActive = "active"
)

// Series is one entry of the exchange's series catalog.
type Series struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

// Event groups the bracket markets of a single underlying outcome.
type Event struct {
	EventTicker       string   `json:"event_ticker"`
	Title             string   `json:"title"`
	MutuallyExclusive bool     `json:"mutually_exclusive"`
	Status            string   `json:"status,omitempty"`
	Markets           []Market `json:"markets"`
}

// ActiveMarkets returns the event's markets in status "active".
func (e *Event) ActiveMarkets() []Market {
	var active []Market
	for _, m := range e.Markets {
		if m.Status == MarketStatusActive {
			active = append(active, m)
		}
	}
	return active
}

// Market is one bracket of an event.
type Market struct {
	Ticker   string `json:"ticker"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Status   string `json:"status"`
	Result   string `json:"result,omitempty"`
}

// PriceLevel is one level of an order book side. The wire form is a
// two-element tuple [price_cents, quantity].
type PriceLevel struct {
	Price    int64
	Quantity int64
}

// UnmarshalJSON decodes the [price, quantity] tuple form.
func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var tuple [2]int64
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("price level must be a [price, quantity] tuple: %w", err)
	}
	l.Price = tuple[0]
	l.Quantity = tuple[1]
	return nil
}

// MarshalJSON encodes back to the tuple form.
func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{l.Price, l.Quantity})
}

// Orderbook is a depth-limited book snapshot. The exchange sends null for a
// side with no resting orders; that decodes to a nil slice here, and both
// sides must be treated as unordered.
type Orderbook struct {
	Yes []PriceLevel `json:"yes"`
	No  []PriceLevel `json:"no"`
}

// CreateOrderRequest is the body of POST /portfolio/orders. The wire field
// for the order type is "type". The price of the unused side stays null.
type CreateOrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Count         int64  `json:"count"`
	YesPrice      *int64 `json:"yes_price"`
	NoPrice       *int64 `json:"no_price"`
}

// Order is the exchange's view of a placed order.
type Order struct {
	OrderID        string `json:"order_id"`
	Ticker         string `json:"ticker"`
	Status         string `json:"status"`
	Action         string `json:"action"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	YesPrice       *int64 `json:"yes_price,omitempty"`
	NoPrice        *int64 `json:"no_price,omitempty"`
	Count          *int64 `json:"count,omitempty"`
	RemainingCount *int64 `json:"remaining_count,omitempty"`
	FillCount      *int64 `json:"fill_count,omitempty"`
}

// EffectiveCount is the contract count an order actually represents:
// fill_count when the exchange reports it, otherwise count.
func (o *Order) EffectiveCount() int64 {
	if o.FillCount != nil {
		return *o.FillCount
	}
	if o.Count != nil {
		return *o.Count
	}
	return 0
}

// YesPriceCents returns yes_price or 0 when absent.
func (o *Order) YesPriceCents() int64 {
	if o.YesPrice != nil {
		return *o.YesPrice
	}
	return 0
}

// Response envelopes. A missing cursor decodes to "" and ends pagination.

type seriesResponse struct {
	Series []Series `json:"series"`
	Cursor string   `json:"cursor"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
	Cursor string   `json:"cursor"`
}

type orderbookResponse struct {
	Orderbook Orderbook `json:"orderbook"`
}

type createOrderResponse struct {
	Order Order `json:"order"`
}

// Int64Ptr returns a pointer to v, for optional wire fields.
func Int64Ptr(v int64) *int64 {
	return &v
}
