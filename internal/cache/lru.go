package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache bounds entries by count and by age. Reads refresh recency;
// inserting past capacity evicts the least recently used entry.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

var _ Cache[int] = (*LRUCache[int])(nil)
var _ Cleaner = (*LRUCache[int])(nil)

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value when present and unexpired. An expired
// entry is dropped on access.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		c.remove(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.data, true
}

// Set stores a value under key, resetting its TTL. When the cache is
// full the least recently used entry makes room.
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, ok := c.entries[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.entries[key] = c.order.PushFront(e)

	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
}

func (c *LRUCache[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.entries, e.key)
	c.order.Remove(elem)
}

// CleanExpired drops every expired entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.remove(elem)
	}
	return len(expired)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
