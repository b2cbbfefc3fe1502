package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

const (
	opportunitiesFile  = "opportunities.md"
	tradesFile         = "trades.md"
	scansFile          = "scans.md"
	reconciliationFile = "reconciliation.md"
)

// FileStore appends pipe-table rows to markdown files under a data
// directory. Each file gets a header row when it is first created.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// FileConfig holds file store configuration.
type FileConfig struct {
	// Dir is the sink directory, "data" when empty.
	Dir    string
	Logger *zap.Logger
}

// NewFileStore creates the sink directory and returns the store.
func NewFileStore(cfg *FileConfig) (*FileStore, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sink directory %s: %w", dir, err)
	}

	cfg.Logger.Info("file-store-ready", zap.String("dir", dir))
	return &FileStore{dir: dir, logger: cfg.Logger}, nil
}

// LogOpportunity appends one row to opportunities.md.
func (s *FileStore) LogOpportunity(_ context.Context, opp *detector.Opportunity, executed bool) error {
	executedCell := "NO"
	if executed {
		executedCell = "YES"
	}

	line := fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s | %s%% | %s |",
		timestamp(),
		opp.EventTicker,
		opp.Direction,
		len(opp.Brackets),
		dollars(opp.SumCents),
		dollars(opp.TotalFeesCents),
		dollars(opp.NetProfitCents),
		opp.ROIPct.StringFixed(1),
		executedCell,
	)

	header := "| timestamp | event | direction | brackets | sum | fees | net | roi | executed |\n" +
		"|---|---|---|---|---|---|---|---|---|"
	return s.appendLine(opportunitiesFile, header, line)
}

// LogTrade appends one row to trades.md. The fee is recomputed from the
// exchange-returned yes_price at the requested count.
func (s *FileStore) LogTrade(_ context.Context, opp *detector.Opportunity, ticker string, order *kalshi.Order, count int64) error {
	price := order.YesPriceCents()
	fee := detector.TakerFeeCents(count, price)

	line := fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %s | %s | %s |",
		timestamp(),
		opp.EventTicker,
		ticker,
		tradeSide(opp.Direction),
		dollars(price),
		count,
		dollars(fee),
		order.OrderID,
		order.Status,
	)

	header := "| timestamp | event | ticker | side | price | count | fee | order_id | status |\n" +
		"|---|---|---|---|---|---|---|---|---|"
	return s.appendLine(tradesFile, header, line)
}

// LogScan appends one row to scans.md.
func (s *FileStore) LogScan(_ context.Context, stats ScanStats) error {
	line := fmt.Sprintf("| %s | %d | %d | %d | %d |",
		timestamp(),
		stats.Series,
		stats.Events,
		stats.Opportunities,
		stats.Trades,
	)

	header := "| timestamp | series | events | opportunities | trades |\n" +
		"|---|---|---|---|---|"
	return s.appendLine(scansFile, header, line)
}

// LogReconciliation appends one row to reconciliation.md. An incomplete
// reconciliation carries an INCOMPLETE marker on the slippage cell.
func (s *FileStore) LogReconciliation(_ context.Context, rec *execution.Reconciliation) error {
	slippageCell := dollars(rec.SlippageCents)
	if !rec.Complete {
		slippageCell += " (INCOMPLETE)"
	}

	line := fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |",
		timestamp(),
		rec.EventTicker,
		rec.Direction,
		strings.Join(rec.OrderIDs, ","),
		strings.Join(rec.Statuses, ","),
		dollars(rec.ExpectedNetCents),
		dollars(rec.ActualNetCents),
		slippageCell,
	)

	header := "| timestamp | event | direction | order_ids | statuses | expected_net | actual_net | slippage |\n" +
		"|---|---|---|---|---|---|---|---|"
	return s.appendLine(reconciliationFile, header, line)
}

// Close is a no-op; files are opened per append.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) appendLine(name, header, line string) error {
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(header + "\n"); err != nil {
			return fmt.Errorf("write header to %s: %w", path, err)
		}
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}
	return nil
}
