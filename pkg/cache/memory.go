package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a MemoryCache created with a non-positive size.
const DefaultMaxEntries = 256

// MemoryCache is an in-process LRU cache with optional per-entry expiry.
type MemoryCache struct {
	max int
	now func() time.Time

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		max:     maxEntries,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns a copy of the stored value. Expired entries are dropped.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data, evicting the least recently used entry when
// the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &memoryEntry{key: key, data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return nil
	}
	c.entries[key] = c.order.PushFront(e)
	for c.order.Len() > c.max {
		c.remove(c.order.Back())
	}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.entries)
	return nil
}

func (c *MemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryEntry).key)
}

var _ Cache = (*MemoryCache)(nil)
