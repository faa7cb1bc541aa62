// Package cache holds the two in-process single-slot caches that sit in
// front of the backend stores. Both are deliberately single-slot: the cached
// resources are effectively singletons (site-wide settings, one store's FAQ
// listing), so a second distinct key overwrites rather than coexists with the
// first. Owned by the cms.Manager and injected into handlers, never global.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL bounds settings-like cached data.
const DefaultTTL = 5 * time.Minute

// TTLCache holds one cached payload plus the time it was written. A read is
// a hit only while now-writtenAt < ttl; after that the caller must fetch
// fresh data and repopulate explicitly.
type TTLCache struct {
	mu        sync.Mutex
	payload   any
	writtenAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewTTLCache creates a TTL-boxed cache. A non-positive ttl falls back to
// DefaultTTL.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{ttl: ttl, now: time.Now}
}

// Get returns the cached payload and whether it is still fresh.
func (c *TTLCache) Get() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload == nil {
		return nil, false
	}
	if c.now().Sub(c.writtenAt) >= c.ttl {
		return nil, false
	}
	return c.payload, true
}

// Set stores the payload and records the write time.
func (c *TTLCache) Set(payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = payload
	c.writtenAt = c.now()
}

// Clear drops the cached payload.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = nil
}

// KeyedCache holds one payload plus the key that produced it. There is no
// TTL; staleness is controlled purely by explicit Clear calls from mutating
// handlers. Writing a different key evicts the previous slot.
type KeyedCache struct {
	mu        sync.Mutex
	key       string
	payload   any
	writtenAt time.Time
}

// NewKeyedCache creates an empty key-validated cache.
func NewKeyedCache() *KeyedCache {
	return &KeyedCache{}
}

// Get returns the cached payload when key matches the slot's key.
func (c *KeyedCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload == nil || c.key != key {
		return nil, false
	}
	return c.payload, true
}

// Set stores the payload under key, replacing whatever was cached before.
func (c *KeyedCache) Set(key string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = key
	c.payload = payload
	c.writtenAt = time.Now()
}

// Clear empties the slot; any subsequent Get misses regardless of key.
func (c *KeyedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = ""
	c.payload = nil
}
