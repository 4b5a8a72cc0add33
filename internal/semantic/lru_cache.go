package semantic

import (
	"container/list"
	"sync"
)

// typeCache is a thread-safe least-recently-used cache of resolved types,
// keyed by scope and written text.
type typeCache struct {
	maxSize int
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
}

type cacheEntry struct {
	key   string
	value *Type
}

func newTypeCache(maxSize int) *typeCache {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &typeCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *typeCache) get(key string) (*Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

func (c *typeCache) set(key string, value *Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *typeCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *typeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
