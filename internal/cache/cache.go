// Package cache provides a bounded, TTL-based, thread-safe store for
// extraction results, keyed by document content and configuration signature.
//
// The cache is in-process memory only: it does not survive restarts and is
// not shared across instances. Multi-instance deployments see independent,
// smaller hit rates.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry holds a cached payload plus bookkeeping.
type Entry struct {
	Payload   []byte
	CreatedAt time.Time
	HitCount  int
}

type item struct {
	key   string
	entry Entry
}

// Cache is a TTL + LRU cache for serialized extraction payloads.
// The TTL is evaluated at read time against each entry's creation time, so a
// Configure call takes effect for entries already stored.
//
// All mutating operations run under a single coarse lock; operations are
// short map/list updates, so finer-grained locking buys nothing here.
//
// The cache never sees failed extractions: callers only Set successfully
// validated results. That discipline lives in the orchestrator, not here.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = least recently used

	now func() time.Time // overridable in tests
}

// New creates a cache with the given TTL and capacity.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Configure applies runtime limits and prunes anything the new limits exclude.
func (c *Cache) Configure(ttl time.Duration, maxEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
	c.maxEntries = maxEntries
	c.pruneExpiredLocked(c.now())
	c.pruneCapacityLocked()
}

// Get returns the cached payload for key, or ok=false on a miss.
// Expired entries are evicted lazily here. A hit bumps the entry's recency
// and hit count. The returned slice must not be mutated by the caller.
func (c *Cache) Get(key string) ([]byte, bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	it := el.Value.(*item)
	if c.expiredLocked(it.entry, now) {
		c.order.Remove(el)
		delete(c.entries, it.key)
		return nil, false
	}

	it.entry.HitCount++
	c.order.MoveToBack(el)
	return it.entry.Payload, true
}

// Set inserts or replaces the payload for key, enforcing TTL and capacity
// bounds. The last successful Set for a key wins.
func (c *Cache) Set(key string, payload []byte) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneExpiredLocked(now)

	entry := Entry{Payload: payload, CreatedAt: now}
	if el, ok := c.entries[key]; ok {
		el.Value.(*item).entry = entry
		c.order.MoveToBack(el)
	} else {
		c.entries[key] = c.order.PushBack(&item{key: key, entry: entry})
	}

	c.pruneCapacityLocked()
}

// HitCount reports the recorded hits for key, for observability. It does not
// touch recency or expiry.
func (c *Cache) HitCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		return el.Value.(*item).entry.HitCount
	}
	return 0
}

// Len returns the number of stored entries, including not-yet-pruned expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears all cache state.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *Cache) expiredLocked(e Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) pruneExpiredLocked(now time.Time) {
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		it := el.Value.(*item)
		if c.expiredLocked(it.entry, now) {
			c.order.Remove(el)
			delete(c.entries, it.key)
		}
		el = next
	}
}

func (c *Cache) pruneCapacityLocked() {
	for len(c.entries) > c.maxEntries {
		el := c.order.Front()
		if el == nil {
			return
		}
		it := el.Value.(*item)
		c.order.Remove(el)
		delete(c.entries, it.key)
	}
}
