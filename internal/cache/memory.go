package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps query results in process memory. Entries expire on
// their own TTL; a background sweep reclaims the expired ones.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	cleanup := defaultTTL
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryCache{
		entries: gocache.New(defaultTTL, cleanup),
	}
}

// Get returns the cached value for key, if present and unexpired
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	return val.([]byte), true
}

// Set stores value under key. A zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.entries.Set(key, value, ttl)
	return nil
}

// Delete removes key from the cache
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}
