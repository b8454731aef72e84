package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CacheMetrics tracks cache performance
type CacheMetrics struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Evictions int64 `json:"evictions"`
}

// UnifiedCache is a typed cache over go-cache. Reads extend an entry's
// lifetime, so entries expire ttl after their last use.
type UnifiedCache[T any] struct {
	store   *gocache.Cache
	ttl     time.Duration
	name    string
	logger  *zap.Logger
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	evicted atomic.Int64
}

// NewUnifiedCache creates a cache whose entries live for ttl after last use.
// onEvict, when not nil, runs for every entry that expires or is deleted.
func NewUnifiedCache[T any](ttl time.Duration, name string, logger *zap.Logger, onEvict func(key string, value T)) *UnifiedCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UnifiedCache[T]{
		store:  gocache.New(ttl, ttl/2),
		ttl:    ttl,
		name:   name,
		logger: logger,
	}
	c.store.OnEvicted(func(key string, v interface{}) {
		c.evicted.Add(1)
		c.logger.Debug("Cache evict",
			zap.String("cache", c.name),
			zap.String("key", key),
		)
		if onEvict == nil {
			return
		}
		if value, ok := v.(T); ok {
			onEvict(key, value)
		}
	})
	return c
}

// Set stores an item in the cache with the given key
func (c *UnifiedCache[T]) Set(key string, value T) {
	c.store.Set(key, value, gocache.DefaultExpiration)
	c.sets.Add(1)

	c.logger.Debug("Cache set",
		zap.String("cache", c.name),
		zap.String("key", key),
		zap.Duration("ttl", c.ttl),
	)
}

// Get retrieves an item from the cache and refreshes its expiry. The refresh
// only succeeds while the entry is still stored, so an entry evicted between
// the read and the refresh reads as a miss instead of coming back.
func (c *UnifiedCache[T]) Get(key string) (T, bool) {
	var zero T
	v, found := c.store.Get(key)
	if !found {
		c.misses.Add(1)
		c.logger.Debug("Cache miss",
			zap.String("cache", c.name),
			zap.String("key", key),
		)
		return zero, false
	}
	value, ok := v.(T)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	if err := c.store.Replace(key, value, gocache.DefaultExpiration); err != nil {
		c.misses.Add(1)
		c.logger.Debug("Cache entry evicted during read",
			zap.String("cache", c.name),
			zap.String("key", key),
		)
		return zero, false
	}
	c.hits.Add(1)
	return value, true
}

// Delete removes an item from the cache; the eviction hook runs for it.
func (c *UnifiedCache[T]) Delete(key string) {
	c.store.Delete(key)
}

// DeleteExpired evicts every expired entry now instead of waiting for the
// janitor.
func (c *UnifiedCache[T]) DeleteExpired() {
	c.store.DeleteExpired()
}

// GetMetrics returns current cache metrics
func (c *UnifiedCache[T]) GetMetrics() CacheMetrics {
	return CacheMetrics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Evictions: c.evicted.Load(),
	}
}

// Size returns the number of items in the cache, expired ones included until
// they are evicted.
func (c *UnifiedCache[T]) Size() int {
	return c.store.ItemCount()
}
