package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/graphgate/internal/model"
)

// Cache defines the interface for query-result caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a namespace and payload
func Key(namespace, payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return "graphgate:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// FromConfig builds a cache backend from configuration. Returns nil
// when caching is disabled; callers treat a nil cache as no cache.
func FromConfig(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(ttl), nil
	case "disk":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("disk cache requires a directory")
		}
		return NewDiskCache(cfg.Dir, ttl), nil
	case "layered":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("layered cache requires a directory")
		}
		return NewLayeredCache(ttl, cfg.Dir, ttl), nil
	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisDB, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
