package spatial

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Locator answers "which boundary contains this point".
type Locator interface {
	Locate(p domain.Location) (string, bool)
}

// CacheStats receives hit and miss notifications.
type CacheStats interface {
	CacheHit()
	CacheMiss()
}

// CachedLocator wraps a Locator with an in-memory LRU cache keyed by
// coordinates rounded to six decimal places. Misses (ocean) are cached too:
// boundaries never change for the life of a locator.
type CachedLocator struct {
	inner Locator
	stats CacheStats
	cache *lruCache
}

// NewCachedLocator creates a cache decorator around a locator. stats may be nil.
func NewCachedLocator(inner Locator, maxEntries int, stats CacheStats) *CachedLocator {
	return &CachedLocator{
		inner: inner,
		stats: stats,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedLocator) Locate(p domain.Location) (string, bool) {
	key := fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
	if r, ok := c.cache.get(key); ok {
		if c.stats != nil {
			c.stats.CacheHit()
		}
		return r.name, r.found
	}
	if c.stats != nil {
		c.stats.CacheMiss()
	}
	name, found := c.inner.Locate(p)
	c.cache.put(key, locateResult{name: name, found: found})
	return name, found
}

type locateResult struct {
	name  string
	found bool
}

// lruCache holds locate results, most recently used at the front.
type lruCache struct {
	mu    sync.Mutex
	max   int
	order *list.List // of *cacheItem
	items map[string]*list.Element
}

type cacheItem struct {
	key    string
	result locateResult
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		max:   max(maxEntries, 1),
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *lruCache) get(key string) (locateResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return locateResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).result, true
}

func (c *lruCache) put(key string, result locateResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem).result = result
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, result: result})

	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}
