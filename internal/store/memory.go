package store

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/i474232898/temptrack/internal/weather"
)

// ViewCache is a concurrency-safe memo of the most recent weather view.
// It holds at most one entry: storing a view under a new key drops the old
// one, and entries also expire after the configured TTL.
type ViewCache struct {
	mu      sync.Mutex
	items   *cache.Cache
	lastKey string
}

// NewViewCache creates a ViewCache. A ttl <= 0 keeps entries until the key changes.
func NewViewCache(ttl time.Duration) *ViewCache {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &ViewCache{
		items: cache.New(expiration, cleanup),
	}
}

// Get returns the memoized view when key matches the last stored key.
func (c *ViewCache) Get(key string) (*weather.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key != c.lastKey {
		return nil, false
	}
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	view, ok := v.(*weather.View)
	return view, ok
}

// Set stores view under key, invalidating any entry for a different key.
func (c *ViewCache) Set(key string, view *weather.View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key != c.lastKey {
		c.items.Flush()
	}
	c.items.SetDefault(key, view)
	c.lastKey = key
}

// Invalidate drops the memoized view.
func (c *ViewCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Flush()
	c.lastKey = ""
}
