package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_HitAndMissCounters(t *testing.T) {
	cache := newTestCache(t)

	missesBefore := testutil.ToFloat64(CacheMissesTotal)
	cache.Get("never-set")
	if delta := testutil.ToFloat64(CacheMissesTotal) - missesBefore; delta != 1 {
		t.Errorf("miss counter delta = %v, want 1", delta)
	}

	cache.Set("hit-me", "value", time.Hour)
	cache.Wait()

	hitsBefore := testutil.ToFloat64(CacheHitsTotal)
	if _, found := cache.Get("hit-me"); !found {
		t.Skip("entry not admitted")
	}
	if delta := testutil.ToFloat64(CacheHitsTotal) - hitsBefore; delta != 1 {
		t.Errorf("hit counter delta = %v, want 1", delta)
	}
}

func TestMetrics_SetAndDeleteCounters(t *testing.T) {
	cache := newTestCache(t)

	setsBefore := testutil.ToFloat64(CacheSetsTotal)
	cache.Set("counted", "value", time.Hour)
	if delta := testutil.ToFloat64(CacheSetsTotal) - setsBefore; delta != 1 {
		t.Errorf("set counter delta = %v, want 1", delta)
	}

	deletesBefore := testutil.ToFloat64(CacheDeletesTotal)
	cache.Delete("counted")
	if delta := testutil.ToFloat64(CacheDeletesTotal) - deletesBefore; delta != 1 {
		t.Errorf("delete counter delta = %v, want 1", delta)
	}
}
