package ibge

import (
	"context"
	"strings"
	"sync"

	"github.com/geodados/municipio-data-etl/internal/geo"
	"github.com/geodados/municipio-data-etl/internal/observability"
)

// MeshFetcher retrieves the municipal mesh for one state.
type MeshFetcher interface {
	FetchMesh(ctx context.Context, uf string) (geo.FeatureTable, error)
}

// CachedMeshFetcher wraps a MeshFetcher with an in-memory LRU cache. Mesh
// payloads are several megabytes per state and immutable within a run, so
// repeated fetches for the same UF hit the cache instead of the network.
type CachedMeshFetcher struct {
	inner   MeshFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedMeshFetcher creates a cache decorator around a mesh fetcher.
func NewCachedMeshFetcher(inner MeshFetcher, maxEntries int, metrics *observability.Metrics) *CachedMeshFetcher {
	return &CachedMeshFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedMeshFetcher) FetchMesh(ctx context.Context, uf string) (geo.FeatureTable, error) {
	key := strings.ToUpper(uf)
	if table, ok := c.cache.get(key); ok {
		c.metrics.MeshCache.WithLabelValues("hit").Inc()
		return table, nil
	}
	c.metrics.MeshCache.WithLabelValues("miss").Inc()

	table, err := c.inner.FetchMesh(ctx, uf)
	if err != nil {
		return table, err
	}
	// Only cache non-empty tables so transient empty responses can be retried.
	if len(table.Features) > 0 {
		c.cache.put(key, table)
	}
	return table, nil
}

// lruCache is a simple thread-safe LRU cache for mesh feature tables.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value geo.FeatureTable
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (geo.FeatureTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return geo.FeatureTable{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value geo.FeatureTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
