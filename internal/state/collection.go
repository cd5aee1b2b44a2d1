package state

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"leadlist-tui/internal/window"
)

// Collection is an ordered set of uniquely keyed items. Insertion order is
// display order. Re-inserting a key updates its value and keeps its position.
type Collection[K comparable, V any] struct {
	items *orderedmap.OrderedMap[K, V]
	// order indexes the pairs of items by position, oldest first
	order   []*orderedmap.Pair[K, V]
	keyFunc func(V) K

	total   window.Total
	version uint64
	mutex   sync.RWMutex
}

// NewCollection creates an empty collection keyed by keyFunc
func NewCollection[K comparable, V any](keyFunc func(V) K) *Collection[K, V] {
	return &Collection[K, V]{
		items:   orderedmap.New[K, V](),
		order:   make([]*orderedmap.Pair[K, V], 0),
		keyFunc: keyFunc,
		total:   window.UnknownTotal,
	}
}

// Append upserts values in order and returns how many were new
func (c *Collection[K, V]) Append(values ...V) int {
	if len(values) == 0 {
		return 0
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, v := range values {
		c.items.Set(c.keyFunc(v), v)
	}
	added := c.extendOrder()
	c.version++
	return added
}

// extendOrder indexes the pairs pushed after the last indexed one. Upserts
// keep their pair, so only new keys are walked.
func (c *Collection[K, V]) extendOrder() int {
	next := c.items.Oldest()
	if n := len(c.order); n > 0 {
		next = c.order[n-1].Next()
	}
	added := 0
	for ; next != nil; next = next.Next() {
		c.order = append(c.order, next)
		added++
	}
	return added
}

// At returns the item at display position i
func (c *Collection[K, V]) At(i int) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var zero V
	if i < 0 || i >= len(c.order) {
		return zero, false
	}
	return c.order[i].Value, true
}

// Get returns the item stored under key
func (c *Collection[K, V]) Get(key K) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.items.Get(key)
}

// Len returns the number of loaded items
func (c *Collection[K, V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.order)
}

// Version changes on every mutation and identifies the current contents
func (c *Collection[K, V]) Version() uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.version
}

// SetTotal records how many items the source can deliver
func (c *Collection[K, V]) SetTotal(total window.Total) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if total != c.total {
		c.total = total
		c.version++
	}
}

// KnownTotal returns the total reported by the source
func (c *Collection[K, V]) KnownTotal() window.Total {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.total
}

// AtEnd reports whether every item of a known total is loaded
func (c *Collection[K, V]) AtEnd() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return window.AtEnd(len(c.order), c.total)
}

// Reset drops every item and forgets the total
func (c *Collection[K, V]) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = orderedmap.New[K, V]()
	c.order = nil
	c.total = window.UnknownTotal
	c.version++
}
