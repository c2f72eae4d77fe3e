package cache

import "time"

// LayeredCache fronts a disk cache with a memory cache. Reads check
// memory first and promote disk hits; writes land in both layers.
type LayeredCache struct {
	mem  Cache
	disk Cache
}

// NewLayeredCache creates a layered cache over dir
func NewLayeredCache(memTTL time.Duration, dir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		mem:  NewMemoryCache(memTTL),
		disk: NewDiskCache(dir, diskTTL),
	}
}

// Get checks memory, then disk. Disk hits are promoted into memory
// with the default TTL.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.mem.Get(key); found {
		return val, true
	}
	if val, found := c.disk.Get(key); found {
		_ = c.mem.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.mem.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes key from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.mem.Delete(key)
	return c.disk.Delete(key)
}

// Clear drops both layers
func (c *LayeredCache) Clear() error {
	_ = c.mem.Clear()
	return c.disk.Clear()
}
