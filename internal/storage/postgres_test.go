package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &PostgresStore{db: db, logger: zaptest.NewLogger(t)}, mock
}

func TestPostgresStore_LogOpportunity(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	opp := detector.CreateTestOpportunity("KXEVT", detector.DirectionLong)

	mock.ExpectExec("INSERT INTO opportunities").
		WithArgs(
			opp.ID,
			opp.DetectedAt,
			"KXEVT",
			"LONG",
			3,
			int64(90),
			int64(44),
			int64(56),
			opp.ROIPct.String(),
			true,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogOpportunity(context.Background(), opp, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LogTrade(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	opp := detector.CreateTestOpportunity("KXEVT", detector.DirectionShort)
	order := &kalshi.Order{
		OrderID:  "ord-9",
		Status:   kalshi.OrderStatusResting,
		YesPrice: kalshi.Int64Ptr(38),
	}

	// fee(10, 38) = ceil(7*10*38*62/10_000) = 17
	mock.ExpectExec("INSERT INTO trades").
		WithArgs("KXEVT", "KXEVT-B2", "SELL_YES", int64(38), int64(10), int64(17), "ord-9", "resting").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogTrade(context.Background(), opp, "KXEVT-B2", order, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LogScan(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO scans").
		WithArgs(3, 14, 1, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogScan(context.Background(), ScanStats{Series: 3, Events: 14, Opportunities: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LogReconciliation(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	rec := &execution.Reconciliation{
		EventTicker:      "KXEVT",
		Direction:        detector.DirectionLong,
		OrderIDs:         []string{"o1", "o2"},
		Statuses:         []string{"executed", "resting"},
		ExpectedNetCents: 56,
		ActualNetCents:   -40,
		SlippageCents:    -96,
		Complete:         false,
	}

	mock.ExpectExec("INSERT INTO reconciliations").
		WithArgs("KXEVT", "LONG", "o1,o2", "executed,resting", int64(56), int64(-40), int64(-96), false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogReconciliation(context.Background(), rec)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertErrorPropagates(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	opp := detector.CreateTestOpportunity("KXEVT", detector.DirectionLong)

	mock.ExpectExec("INSERT INTO opportunities").
		WillReturnError(sqlmock.ErrCancelled)

	err := store.LogOpportunity(context.Background(), opp, false)
	assert.Error(t, err)
}

func TestPostgresStore_Close(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	mock.ExpectClose()

	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
