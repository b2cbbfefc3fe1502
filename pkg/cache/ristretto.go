package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// RistrettoCache backs the Cache interface with an in-process ristretto
// cache. Entries are counted rather than sized: every entry costs 1
// against MaxCost.
type RistrettoCache struct {
	store  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds ristretto cache configuration.
type RistrettoConfig struct {
	// NumCounters is the number of keys to track access frequency for,
	// roughly ten times the expected entry count.
	NumCounters int64
	// MaxCost is the capacity in entries.
	MaxCost int64
	// BufferItems is the number of keys per internal get buffer.
	BufferItems int64
	Logger      *zap.Logger
}

// NewRistrettoCache creates a new ristretto-backed cache.
func NewRistrettoCache(cfg *RistrettoConfig) (Cache, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	return &RistrettoCache{
		store:  store,
		logger: cfg.Logger,
	}, nil
}

// Get retrieves a value from the cache.
func (c *RistrettoCache) Get(key string) (interface{}, bool) {
	value, ok := c.store.Get(key)
	if !ok {
		CacheMissesTotal.Inc()
		c.logger.Debug("cache-miss", zap.String("key", key))
		return nil, false
	}

	CacheHitsTotal.Inc()
	c.logger.Debug("cache-hit", zap.String("key", key))
	return value, true
}

// Set stores a value at unit cost. A zero ttl stores the entry without an
// expiration, which is how catalog entries whose freshness is tracked by
// the caller are kept.
func (c *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	if !c.store.SetWithTTL(key, value, 1, ttl) {
		return false
	}

	CacheSetsTotal.Inc()
	c.logger.Debug("cache-set",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return true
}

// Delete removes a value from the cache.
func (c *RistrettoCache) Delete(key string) {
	c.store.Del(key)
	CacheDeletesTotal.Inc()
	c.logger.Debug("cache-delete", zap.String("key", key))
}

// Clear removes every entry.
func (c *RistrettoCache) Clear() {
	c.store.Clear()
	c.logger.Info("cache-cleared")
}

// Close releases the cache's internal goroutines. The cache is unusable
// afterwards.
func (c *RistrettoCache) Close() {
	c.store.Close()
	c.logger.Info("cache-closed")
}

// Wait blocks until pending writes have been applied. Sets are buffered,
// so a Get immediately after a Set may miss without it.
func (c *RistrettoCache) Wait() {
	c.store.Wait()
}
