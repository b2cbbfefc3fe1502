package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// MultiStore fans every record out to all underlying stores. One store
// failing never stops the others; failures are logged and absorbed so the
// file sinks stay authoritative even when a mirror is down.
type MultiStore struct {
	stores []Store
	logger *zap.Logger
}

// NewMultiStore wraps the given stores. It is valid with a single store.
func NewMultiStore(logger *zap.Logger, stores ...Store) *MultiStore {
	return &MultiStore{stores: stores, logger: logger}
}

// LogOpportunity fans out to every store.
func (m *MultiStore) LogOpportunity(ctx context.Context, opp *detector.Opportunity, executed bool) error {
	for _, s := range m.stores {
		if err := s.LogOpportunity(ctx, opp, executed); err != nil {
			m.logger.Warn("store-append-failed",
				zap.String("record", "opportunity"),
				zap.Error(err))
		}
	}
	return nil
}

// LogTrade fans out to every store.
func (m *MultiStore) LogTrade(ctx context.Context, opp *detector.Opportunity, ticker string, order *kalshi.Order, count int64) error {
	for _, s := range m.stores {
		if err := s.LogTrade(ctx, opp, ticker, order, count); err != nil {
			m.logger.Warn("store-append-failed",
				zap.String("record", "trade"),
				zap.Error(err))
		}
	}
	return nil
}

// LogScan fans out to every store.
func (m *MultiStore) LogScan(ctx context.Context, stats ScanStats) error {
	for _, s := range m.stores {
		if err := s.LogScan(ctx, stats); err != nil {
			m.logger.Warn("store-append-failed",
				zap.String("record", "scan"),
				zap.Error(err))
		}
	}
	return nil
}

// LogReconciliation fans out to every store.
func (m *MultiStore) LogReconciliation(ctx context.Context, rec *execution.Reconciliation) error {
	for _, s := range m.stores {
		if err := s.LogReconciliation(ctx, rec); err != nil {
			m.logger.Warn("store-append-failed",
				zap.String("record", "reconciliation"),
				zap.Error(err))
		}
	}
	return nil
}

// Close closes every store, returning the first error seen.
func (m *MultiStore) Close() error {
	var firstErr error
	for _, s := range m.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
