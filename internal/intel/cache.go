package intel

import (
	"container/list"
	"sync"
)

// Classification is a memoized classifier verdict for one candidate.
type Classification struct {
	Category  string
	X         int
	Y         int
	Reasoning string
}

// ClassificationCache is a bounded LRU memo keyed by normalized
// name+category. It replaces the unbounded process-wide map the scoring
// stage would otherwise accumulate across runs.
type ClassificationCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key string
	val Classification
}

// NewClassificationCache creates a cache holding at most capacity entries.
// Capacity below 1 is treated as 1.
func NewClassificationCache(capacity int) *ClassificationCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ClassificationCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the memoized classification for key, marking it recently used.
func (c *ClassificationCache) Get(key string) (Classification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Classification{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).val, true
}

// Put stores a classification, evicting the least recently used entry when
// the cache is full.
func (c *ClassificationCache) Put(key string, val Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).val = val
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, val: val})

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len reports the number of cached entries.
func (c *ClassificationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
