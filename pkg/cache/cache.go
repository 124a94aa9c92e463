package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    interface{}
	expireAt time.Time
}

// TTLCache is a small in-process cache with per-entry expiry. The bot runs as
// a single process, so there is no external cache service behind this.
type TTLCache struct {
	defaultTTL time.Duration

	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New builds a cache with the given default TTL.
func New(defaultTTL time.Duration) *TTLCache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &TTLCache{
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry),
		now:        time.Now,
	}
}

// Get returns the cached value for key, if present and unexpired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expireAt) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *TTLCache) Set(key string, value interface{}) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *TTLCache) SetTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expireAt: c.now().Add(ttl)}
}

// Delete removes key from the cache.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup drops expired entries.
func (c *TTLCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expireAt) {
			delete(c.entries, key)
		}
	}
}
