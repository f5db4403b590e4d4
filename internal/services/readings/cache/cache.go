// Package cache implements the bounded LRU response cache with per-entry TTL
//
// Policy notes:
//   - TTL is absolute from insertion; a Get refreshes LRU recency but never
//     extends the TTL clock
//   - expired entries are logically absent and removed lazily on Get
//   - eviction picks the least recently used entry once capacity is reached
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

type entry[V any] struct {
	key        string
	val        V
	insertedAt time.Time
}

// Cache is safe for concurrent use. The mutex covers one logical operation
// at a time and is never held across I/O
type Cache[V any] struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	hits   atomic.Uint64
	misses atomic.Uint64

	now func() time.Time
}

// New builds a cache with the given capacity and TTL
// capacity must be positive; ttl <= 0 disables expiry
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		cap:   capacity,
		ttl:   ttl,
		ll:    list.New(),
		items: make(map[string]*list.Element, capacity),
		now:   time.Now,
	}
}

// WithNow swaps the clock, used by tests to simulate TTL expiry
func (c *Cache[V]) WithNow(now func() time.Time) *Cache[V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the live value for key and refreshes its recency
// Expired entries are removed and reported as misses
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if c.ttl > 0 && c.now().Sub(ent.insertedAt) >= c.ttl {
		// lazily drop the expired entry
		c.ll.Remove(el)
		delete(c.items, key)
		c.mu.Unlock()
		c.misses.Add(1)
		return zero, false
	}
	c.ll.MoveToFront(el)
	v := ent.val
	c.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Set inserts or replaces the value for key, evicting the LRU entry on overflow
// Replacement resets the TTL clock (entries are swapped wholesale, not mutated)
func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = &entry[V]{key: key, val: val, insertedAt: c.now()}
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&entry[V]{key: key, val: val, insertedAt: c.now()})
	c.items[key] = el
	if c.ll.Len() > c.cap {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*entry[V]).key)
		}
	}
}

// Size returns the current entry count, including not-yet-reaped expired entries
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Capacity returns the configured maximum entry count
func (c *Cache[V]) Capacity() int { return c.cap }

// Hits returns the number of successful Gets
func (c *Cache[V]) Hits() uint64 { return c.hits.Load() }

// Misses returns the number of Gets that found nothing live
func (c *Cache[V]) Misses() uint64 { return c.misses.Load() }
