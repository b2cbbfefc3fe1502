// Package storage appends scan artifacts to persistent sinks: detected
// opportunities, placed orders, cycle summaries and reconciliations.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// Store is the sink for everything a scan cycle produces. Append failures
// are reported to the caller, who logs and moves on; they are never fatal.
type Store interface {
	// LogOpportunity records a detected opportunity and whether it was executed.
	LogOpportunity(ctx context.Context, opp *detector.Opportunity, executed bool) error

	// LogTrade records one placed order leg of an executed opportunity.
	LogTrade(ctx context.Context, opp *detector.Opportunity, ticker string, order *kalshi.Order, count int64) error

	// LogScan records the counters of one completed scan cycle.
	LogScan(ctx context.Context, stats ScanStats) error

	// LogReconciliation records expected-versus-actual economics of one execution.
	LogReconciliation(ctx context.Context, rec *execution.Reconciliation) error

	// Close releases underlying resources.
	Close() error
}

// ScanStats summarizes one completed scan cycle.
type ScanStats struct {
	Series        int
	Events        int
	Opportunities int
	Trades        int
}

const timeLayout = "2006-01-02T15:04:05Z"

// timestamp is the UTC second-resolution stamp every sink row starts with.
func timestamp() string {
	return time.Now().UTC().Format(timeLayout)
}

// dollars renders cents the way the sinks expect them.
func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100.0)
}

// tradeSide maps a direction to the side label recorded for its orders.
func tradeSide(direction detector.Direction) string {
	if direction == detector.DirectionLong {
		return "BUY_YES"
	}
	return "SELL_YES"
}
