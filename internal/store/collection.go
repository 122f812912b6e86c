package store

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sync"
)

// Collection is an ordered set of records addressed by a natural key.
// Records are values and are never modified in place: every write replaces
// the stored record. Version increases only when the content changes.
type Collection[K comparable, T any] struct {
	mu      sync.RWMutex
	items   []T
	index   map[K]int
	key     func(T) K
	version uint64
}

func NewCollection[K comparable, T any](key func(T) K) *Collection[K, T] {
	return &Collection[K, T]{
		index: make(map[K]int),
		key:   key,
	}
}

// Equal compares two records by their JSON encoding.
func Equal[T any](a, b T) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ab, bb)
}

func (c *Collection[K, T]) Key(item T) K {
	return c.key(item)
}

// Snapshot returns a copy of the collection in insertion order.
func (c *Collection[K, T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

func (c *Collection[K, T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[K, T]) Get(k K) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, ok := c.index[k]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[K, T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[K, T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Find returns every record matching pred, in insertion order.
func (c *Collection[K, T]) Find(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Replace swaps the whole collection and returns the previous content.
func (c *Collection[K, T]) Replace(next []T) []T {
	prev, _ := c.Update(func([]T) []T { return next })
	return prev
}

// Update computes the next collection from the current one and commits it
// atomically. Later duplicates of a key are dropped.
func (c *Collection[K, T]) Update(fn func(prev []T) []T) (prev, next []T) {
	return c.UpdateThen(fn, nil)
}

// UpdateThen is Update with a hook that sees the committed change before the
// lock is released, so hooks of successive writers run in commit order.
func (c *Collection[K, T]) UpdateThen(fn func(prev []T) []T, committed func(prev, next []T)) (prev, next []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev = c.snapshot()
	computed := fn(c.snapshot())

	items := make([]T, 0, len(computed))
	index := make(map[K]int, len(computed))
	for _, item := range computed {
		k := c.key(item)
		if _, dup := index[k]; dup {
			continue
		}
		index[k] = len(items)
		items = append(items, item)
	}

	if !sameItems(prev, items) {
		c.items = items
		c.index = index
		c.version++
	}

	next = c.snapshot()
	if committed != nil {
		committed(prev, next)
	}
	return prev, next
}

func sameItems[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Upsert replaces the record with the same key or appends it. It reports
// false when an equal record is already stored.
func (c *Collection[K, T]) Upsert(item T) bool {
	return c.Merge(item, func(existing T, found bool) (T, bool) {
		return item, !found || !Equal(existing, item)
	})
}

// Insert appends item only when its key is absent.
func (c *Collection[K, T]) Insert(item T) bool {
	return c.Merge(item, func(_ T, found bool) (T, bool) {
		return item, !found
	})
}

// ReplaceExisting replaces the stored record only if it exists and differs.
func (c *Collection[K, T]) ReplaceExisting(item T) bool {
	return c.Merge(item, func(existing T, found bool) (T, bool) {
		return item, found && !Equal(existing, item)
	})
}

// Merge looks up the record sharing item's key and lets fn decide the stored
// value. Nothing is written when fn returns false.
func (c *Collection[K, T]) Merge(item T, fn func(existing T, found bool) (T, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(item)
	i, found := c.index[k]

	var existing T
	if found {
		existing = c.items[i]
	}

	next, write := fn(existing, found)
	if !write {
		return false
	}
	if c.key(next) != k {
		return false
	}

	items := c.snapshot()
	if found {
		items[i] = next
	} else {
		c.index[k] = len(items)
		items = append(items, next)
	}
	c.items = items
	c.version++
	return true
}
