// Package cache provides the short-lived cooldown cache used by the
// fetch layer to stop hammering a host that has rate-limited us.
package cache

import "time"

// CacheService defines the interface for cache implementations
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
