package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewFileStore(&FileConfig{Dir: dir, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return store, dir
}

// readRows returns the non-header lines of one sink file.
func readRows(t *testing.T, dir, name string) []string {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2, "expected header and divider")
	return lines[2:]
}

func cells(t *testing.T, row string) []string {
	t.Helper()

	require.True(t, strings.HasPrefix(row, "| "), "row must start with a pipe: %q", row)
	require.True(t, strings.HasSuffix(row, " |"), "row must end with a pipe: %q", row)

	trimmed := strings.TrimSuffix(strings.TrimPrefix(row, "| "), " |")
	return strings.Split(trimmed, " | ")
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewFileStore(&FileConfig{Dir: dir, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStore_LogOpportunity(t *testing.T) {
	store, dir := newTestFileStore(t)
	opp := detector.CreateTestOpportunity("KXHIGHNY-26AUG25", detector.DirectionLong)

	require.NoError(t, store.LogOpportunity(context.Background(), opp, false))
	require.NoError(t, store.LogOpportunity(context.Background(), opp, true))

	rows := readRows(t, dir, opportunitiesFile)
	require.Len(t, rows, 2)

	first := cells(t, rows[0])
	require.Len(t, first, 9)

	_, err := time.Parse(timeLayout, first[0])
	assert.NoError(t, err, "timestamp cell must be UTC ISO-8601: %q", first[0])

	assert.Equal(t, "KXHIGHNY-26AUG25", first[1])
	assert.Equal(t, "LONG", first[2])
	assert.Equal(t, "3", first[3])
	assert.Equal(t, "$0.90", first[4])
	assert.Equal(t, "$0.44", first[5])
	assert.Equal(t, "$0.56", first[6])
	assert.Equal(t, "5.9%", first[7])
	assert.Equal(t, "NO", first[8])

	second := cells(t, rows[1])
	assert.Equal(t, "YES", second[8])
}

func TestFileStore_LogTrade(t *testing.T) {
	store, dir := newTestFileStore(t)

	tests := []struct {
		name      string
		direction detector.Direction
		wantSide  string
	}{
		{name: "long-buys-yes", direction: detector.DirectionLong, wantSide: "BUY_YES"},
		{name: "short-sells-yes", direction: detector.DirectionShort, wantSide: "SELL_YES"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := detector.CreateTestOpportunity("KXEVT", tt.direction)
			order := &kalshi.Order{
				OrderID:  "ord-123",
				Ticker:   "KXEVT-B2",
				Status:   kalshi.OrderStatusExecuted,
				YesPrice: kalshi.Int64Ptr(30),
			}

			require.NoError(t, store.LogTrade(context.Background(), opp, "KXEVT-B2", order, 10))

			rows := readRows(t, dir, tradesFile)
			require.Len(t, rows, i+1)

			row := cells(t, rows[i])
			require.Len(t, row, 9)
			assert.Equal(t, "KXEVT", row[1])
			assert.Equal(t, "KXEVT-B2", row[2])
			assert.Equal(t, tt.wantSide, row[3])
			assert.Equal(t, "$0.30", row[4])
			assert.Equal(t, "10", row[5])
			// fee(10, 30) = ceil(7*10*30*70/10_000) = 15
			assert.Equal(t, "$0.15", row[6])
			assert.Equal(t, "ord-123", row[7])
			assert.Equal(t, "executed", row[8])
		})
	}
}

func TestFileStore_LogScan(t *testing.T) {
	store, dir := newTestFileStore(t)

	err := store.LogScan(context.Background(), ScanStats{
		Series:        12,
		Events:        87,
		Opportunities: 2,
		Trades:        1,
	})
	require.NoError(t, err)

	rows := readRows(t, dir, scansFile)
	require.Len(t, rows, 1)

	row := cells(t, rows[0])
	require.Len(t, row, 5)
	assert.Equal(t, []string{"12", "87", "2", "1"}, row[1:])
}

func TestFileStore_LogReconciliation(t *testing.T) {
	store, dir := newTestFileStore(t)

	tests := []struct {
		name     string
		rec      *execution.Reconciliation
		wantSlip string
	}{
		{
			name: "complete",
			rec: &execution.Reconciliation{
				EventTicker:      "KXEVT",
				Direction:        detector.DirectionLong,
				OrderIDs:         []string{"o1", "o2", "o3"},
				Statuses:         []string{"executed", "executed", "executed"},
				ExpectedNetCents: 56,
				ActualNetCents:   56,
				SlippageCents:    0,
				Complete:         true,
			},
			wantSlip: "$0.00",
		},
		{
			name: "incomplete-carries-marker",
			rec: &execution.Reconciliation{
				EventTicker:      "KXEVT",
				Direction:        detector.DirectionShort,
				OrderIDs:         []string{"o1", "o2"},
				Statuses:         []string{"executed", "resting"},
				ExpectedNetCents: 50,
				ActualNetCents:   -120,
				SlippageCents:    -170,
				Complete:         false,
			},
			wantSlip: "$-1.70 (INCOMPLETE)",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.LogReconciliation(context.Background(), tt.rec))

			rows := readRows(t, dir, reconciliationFile)
			require.Len(t, rows, i+1)

			row := cells(t, rows[i])
			require.Len(t, row, 8)
			assert.Equal(t, "KXEVT", row[1])
			assert.Equal(t, string(tt.rec.Direction), row[2])
			assert.Equal(t, strings.Join(tt.rec.OrderIDs, ","), row[3])
			assert.Equal(t, strings.Join(tt.rec.Statuses, ","), row[4])
			assert.Equal(t, tt.wantSlip, row[7])
		})
	}
}

func TestFileStore_HeaderWrittenOnce(t *testing.T) {
	store, dir := newTestFileStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.LogScan(context.Background(), ScanStats{Series: i}))
	}

	raw, err := os.ReadFile(filepath.Join(dir, scansFile))
	require.NoError(t, err)

	content := string(raw)
	assert.Equal(t, 1, strings.Count(content, "| timestamp |"))
	assert.Equal(t, 5, strings.Count(content, "\n"), "header, divider and three rows")
}

func TestFileStore_AppendFailureReturnsError(t *testing.T) {
	store, dir := newTestFileStore(t)

	// Replace the sink file with a directory so the open fails.
	require.NoError(t, os.Mkdir(filepath.Join(dir, scansFile), 0o755))

	err := store.LogScan(context.Background(), ScanStats{})
	assert.Error(t, err)
}
