package session

import (
	"sync"
	"time"
)

type cacheItem[T any] struct {
	value     *T
	expiresAt time.Time
}

// Cache is a mutex-guarded map whose entries expire after ttl without access.
type Cache[K comparable, V any] struct {
	items map[K]*cacheItem[V]
	ttl   time.Duration
	now   func() time.Time
	mutex sync.Mutex
}

// NewCache creates a new cache.
func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*cacheItem[V]),
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the value for key, or nil if missing or expired.
// Getting an item extends its TTL.
func (c *Cache[K, V]) Get(key K) *V {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.getLocked(key)
}

func (c *Cache[K, V]) getLocked(key K) *V {
	item, found := c.items[key]
	if !found {
		return nil
	}
	now := c.now()
	if now.After(item.expiresAt) {
		delete(c.items, key)
		return nil
	}
	item.expiresAt = now.Add(c.ttl)
	return item.value
}

// Set stores value under key with a fresh TTL.
func (c *Cache[K, V]) Set(key K, value *V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[key] = &cacheItem[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrCreate returns the live value for key, creating it with create when
// absent. The lookup and insert happen under one lock.
func (c *Cache[K, V]) GetOrCreate(key K, create func() *V) (value *V, created bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if v := c.getLocked(key); v != nil {
		return v, false
	}
	v := create()
	c.items[key] = &cacheItem[V]{value: v, expiresAt: c.now().Add(c.ttl)}
	return v, true
}

// Prune drops expired entries and returns how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	removed := 0
	for k, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included until pruned.
func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
