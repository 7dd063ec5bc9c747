// Package cache provides a bounded LRU cache for memoizing text
// segmentation results.
package cache

import (
	"container/list"
	"sync"
)

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// entry is one key/value pair on the eviction list.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a thread-safe LRU cache with a maximum entry count.
// Eviction is least-recently-used; invalidation is wholesale via Clear.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	max       int
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// New creates an LRU cache holding at most max entries.
// A max of zero or less disables the bound.
func New[K comparable, V any](max int) *Cache[K, V] {
	if max < 0 {
		max = 0
	}
	return &Cache[K, V]{
		max:       max,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return ent.Value.(*entry[K, V]).value, true
}

// Put stores a value, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry[K, V]).value = value
		return
	}

	c.entries[key] = c.evictList.PushFront(&entry[K, V]{key: key, value: value})

	if c.max > 0 && c.evictList.Len() > c.max {
		c.removeOldest()
	}
}

// Clear removes all entries. Hit/miss/eviction counters are preserved.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.max
	return s
}

// removeOldest drops the back of the eviction list; caller holds the lock.
func (c *Cache[K, V]) removeOldest() {
	ent := c.evictList.Back()
	if ent == nil {
		return
	}
	c.evictList.Remove(ent)
	delete(c.entries, ent.Value.(*entry[K, V]).key)
	c.stats.Evictions++
}
