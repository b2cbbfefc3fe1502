package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/pkg/cache"
)

type fakeLister struct {
	mu     sync.Mutex
	calls  int
	fail   bool
	series []kalshi.Series
}

func (f *fakeLister) ListSeries(_ context.Context) ([]kalshi.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("exchange unavailable")
	}
	return f.series, nil
}

func (f *fakeLister) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newCatalogCache(t *testing.T) cache.Cache {
	t.Helper()

	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// flushWrites drains ristretto's buffered writes so a following Get
// observes the entry.
func flushWrites(c cache.Cache) {
	if rc, ok := c.(*cache.RistrettoCache); ok {
		rc.Wait()
	}
}

func newTestSeriesCache(t *testing.T, lister SeriesLister, ttl time.Duration) (*SeriesCache, cache.Cache) {
	t.Helper()

	backing := newCatalogCache(t)
	sc := NewSeriesCache(SeriesCacheConfig{
		Lister: lister,
		Cache:  backing,
		TTL:    ttl,
		Logger: zaptest.NewLogger(t),
	})
	return sc, backing
}

func TestSeriesCache_ServesCachedCatalogWithinTTL(t *testing.T) {
	lister := &fakeLister{series: []kalshi.Series{{Ticker: "KXAAA"}, {Ticker: "KXBBB"}}}
	sc, backing := newTestSeriesCache(t, lister, time.Minute)

	first, err := sc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, lister.callCount())

	flushWrites(backing)

	second, err := sc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.callCount(), "a fresh catalog must not be refetched")
}

func TestSeriesCache_RefreshesWhenStale(t *testing.T) {
	lister := &fakeLister{series: []kalshi.Series{{Ticker: "KXAAA"}}}
	sc, backing := newTestSeriesCache(t, lister, 10*time.Millisecond)

	_, err := sc.Get(context.Background())
	require.NoError(t, err)
	flushWrites(backing)

	time.Sleep(20 * time.Millisecond)

	_, err = sc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lister.callCount())
}

func TestSeriesCache_ServesStaleWhenRefreshFails(t *testing.T) {
	lister := &fakeLister{series: []kalshi.Series{{Ticker: "KXAAA"}}}
	sc, backing := newTestSeriesCache(t, lister, 10*time.Millisecond)

	fresh, err := sc.Get(context.Background())
	require.NoError(t, err)
	flushWrites(backing)

	time.Sleep(20 * time.Millisecond)
	lister.setFail(true)

	stale, err := sc.Get(context.Background())
	require.NoError(t, err, "a stale catalog is better than none")
	assert.Equal(t, fresh, stale)
	assert.Equal(t, 2, lister.callCount())

	// A failed refresh does not re-stamp freshness: the next lookup
	// tries the exchange again.
	_, err = sc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, lister.callCount())
}

func TestSeriesCache_PropagatesFailureWithEmptyCache(t *testing.T) {
	lister := &fakeLister{fail: true}
	sc, _ := newTestSeriesCache(t, lister, time.Minute)

	_, err := sc.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh series catalog")
}

func TestSeriesCache_RefetchesWhenEntryEvicted(t *testing.T) {
	lister := &fakeLister{series: []kalshi.Series{{Ticker: "KXAAA"}}}
	sc, backing := newTestSeriesCache(t, lister, time.Minute)

	_, err := sc.Get(context.Background())
	require.NoError(t, err)
	flushWrites(backing)

	backing.Clear()

	catalog, err := sc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, catalog, 1)
	assert.Equal(t, 2, lister.callCount(), "a lost entry refetches even inside the TTL")
}

func TestNewSeriesCache_DefaultTTL(t *testing.T) {
	lister := &fakeLister{}
	sc, _ := newTestSeriesCache(t, lister, 0)
	assert.Equal(t, DefaultSeriesCacheTTL, sc.ttl)
}
