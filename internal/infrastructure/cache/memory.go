package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/specmatch/backend/internal/domain"
)

// DefaultCapacity is the entry bound used when none is configured
const DefaultCapacity = 1000

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	key        string
	value      domain.ProductFeatureSet
	expiration time.Time // zero means no expiry
}

// MemoryCache is a thread-safe, fixed-capacity feature cache. When full, the
// oldest inserted entry is evicted. Entries are deep-copied on the way in and
// out so callers never share mutable state with the cache.
type MemoryCache struct {
	capacity int
	ttl      time.Duration
	order    *list.List // front = oldest insertion
	items    map[string]*list.Element
	mutex    sync.Mutex
	now      func() time.Time
}

// NewMemoryCache creates a bounded in-memory cache. A non-positive capacity
// uses DefaultCapacity; a zero ttl disables expiry.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get retrieves a feature set from the cache
func (c *MemoryCache) Get(key string) (domain.ProductFeatureSet, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return domain.ProductFeatureSet{}, false
	}

	item := elem.Value.(*cacheItem)
	if !item.expiration.IsZero() && c.now().After(item.expiration) {
		c.removeElement(elem)
		return domain.ProductFeatureSet{}, false
	}

	return item.value.Clone(), true
}

// Set stores a feature set. Re-setting an existing key replaces the value
// but keeps its original insertion position.
func (c *MemoryCache) Set(key string, value domain.ProductFeatureSet) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration time.Time
	if c.ttl > 0 {
		expiration = c.now().Add(c.ttl)
	}

	if elem, exists := c.items[key]; exists {
		item := elem.Value.(*cacheItem)
		item.value = value.Clone()
		item.expiration = expiration
		return
	}

	c.items[key] = c.order.PushBack(&cacheItem{
		key:        key,
		value:      value.Clone(),
		expiration: expiration,
	})

	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Front())
	}
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// Len returns the current number of items in the cache, expired ones included
// until they are touched
func (c *MemoryCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	item := c.order.Remove(elem).(*cacheItem)
	delete(c.items, item.key)
}

// NoopCache never stores anything. It lets the analyzer run with caching
// disabled.
type NoopCache struct{}

// NewNoopCache creates a disabled cache
func NewNoopCache() NoopCache {
	return NoopCache{}
}

// Get always misses
func (NoopCache) Get(string) (domain.ProductFeatureSet, bool) {
	return domain.ProductFeatureSet{}, false
}

// Set discards the value
func (NoopCache) Set(string, domain.ProductFeatureSet) {}

// Len is always zero
func (NoopCache) Len() int { return 0 }

// New builds the cache selected by configuration: "memory" or "none"
func New(cacheType string, capacity int, ttl time.Duration) domain.FeatureCache {
	if cacheType == "none" {
		return NewNoopCache()
	}
	return NewMemoryCache(capacity, ttl)
}
