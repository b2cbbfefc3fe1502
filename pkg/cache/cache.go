// Package cache provides the in-process cache behind the series catalog.
package cache

import "time"

// Cache stores catalog snapshots between scan cycles.
type Cache interface {
	// Get retrieves a value, reporting whether it was present.
	Get(key string) (interface{}, bool)

	// Set stores a value and reports whether it was accepted. A zero
	// ttl stores the entry without an expiration.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value.
	Delete(key string)

	// Clear removes all values.
	Clear()

	// Close releases underlying resources.
	Close()
}
