package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

// PostgresStore mirrors the file sinks into relational tables. Amounts are
// stored in integer cents; the file sinks stay the human-readable view.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	// URL is a lib/pq connection string or postgres:// URL.
	URL    string
	Logger *zap.Logger
}

//nolint:gochecknoglobals // idempotent bootstrap DDL
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS opportunities (
		id            TEXT PRIMARY KEY,
		detected_at   TIMESTAMPTZ NOT NULL,
		event_ticker  TEXT NOT NULL,
		direction     TEXT NOT NULL,
		brackets      INTEGER NOT NULL,
		sum_cents     BIGINT NOT NULL,
		fees_cents    BIGINT NOT NULL,
		net_cents     BIGINT NOT NULL,
		roi_pct       NUMERIC(10,4) NOT NULL,
		executed      BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id            BIGSERIAL PRIMARY KEY,
		logged_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		event_ticker  TEXT NOT NULL,
		ticker        TEXT NOT NULL,
		side          TEXT NOT NULL,
		price_cents   BIGINT NOT NULL,
		count         BIGINT NOT NULL,
		fee_cents     BIGINT NOT NULL,
		order_id      TEXT NOT NULL,
		status        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scans (
		id            BIGSERIAL PRIMARY KEY,
		scanned_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		series        INTEGER NOT NULL,
		events        INTEGER NOT NULL,
		opportunities INTEGER NOT NULL,
		trades        INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reconciliations (
		id                 BIGSERIAL PRIMARY KEY,
		logged_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		event_ticker       TEXT NOT NULL,
		direction          TEXT NOT NULL,
		order_ids          TEXT NOT NULL,
		statuses           TEXT NOT NULL,
		expected_net_cents BIGINT NOT NULL,
		actual_net_cents   BIGINT NOT NULL,
		slippage_cents     BIGINT NOT NULL,
		complete           BOOLEAN NOT NULL
	)`,
}

// NewPostgresStore connects, pings and bootstraps the schema.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	cfg.Logger.Info("postgres-store-connected")
	return &PostgresStore{db: db, logger: cfg.Logger}, nil
}

// LogOpportunity inserts one opportunity row.
func (p *PostgresStore) LogOpportunity(ctx context.Context, opp *detector.Opportunity, executed bool) error {
	query := `
		INSERT INTO opportunities (
			id, detected_at, event_ticker, direction, brackets,
			sum_cents, fees_cents, net_cents, roi_pct, executed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.db.ExecContext(ctx, query,
		opp.ID,
		opp.DetectedAt,
		opp.EventTicker,
		string(opp.Direction),
		len(opp.Brackets),
		opp.SumCents,
		opp.TotalFeesCents,
		opp.NetProfitCents,
		opp.ROIPct.String(),
		executed,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}

	p.logger.Debug("opportunity-mirrored",
		zap.String("opportunity-id", opp.ID),
		zap.String("event", opp.EventTicker))
	return nil
}

// LogTrade inserts one trade row.
func (p *PostgresStore) LogTrade(ctx context.Context, opp *detector.Opportunity, ticker string, order *kalshi.Order, count int64) error {
	price := order.YesPriceCents()
	fee := detector.TakerFeeCents(count, price)

	query := `
		INSERT INTO trades (
			event_ticker, ticker, side, price_cents, count,
			fee_cents, order_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.ExecContext(ctx, query,
		opp.EventTicker,
		ticker,
		tradeSide(opp.Direction),
		price,
		count,
		fee,
		order.OrderID,
		order.Status,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// LogScan inserts one scan row.
func (p *PostgresStore) LogScan(ctx context.Context, stats ScanStats) error {
	query := `
		INSERT INTO scans (series, events, opportunities, trades)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.db.ExecContext(ctx, query,
		stats.Series, stats.Events, stats.Opportunities, stats.Trades)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// LogReconciliation inserts one reconciliation row.
func (p *PostgresStore) LogReconciliation(ctx context.Context, rec *execution.Reconciliation) error {
	query := `
		INSERT INTO reconciliations (
			event_ticker, direction, order_ids, statuses,
			expected_net_cents, actual_net_cents, slippage_cents, complete
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.EventTicker,
		string(rec.Direction),
		strings.Join(rec.OrderIDs, ","),
		strings.Join(rec.Statuses, ","),
		rec.ExpectedNetCents,
		rec.ActualNetCents,
		rec.SlippageCents,
		rec.Complete,
	)
	if err != nil {
		return fmt.Errorf("insert reconciliation: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-store")
	return p.db.Close()
}
