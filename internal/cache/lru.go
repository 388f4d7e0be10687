package cache

import (
	"container/list"
	"sync"
	"time"
)

// lruStore is the shared bounded store behind both caches: least-recently-used
// eviction at capacity, optional per-entry TTL (0 disables expiry), and a
// single mutex spanning every read-check-write sequence so concurrent lookups
// never observe a torn expiry or lose an eviction decision. Expired entries
// are evicted lazily on lookup.
type lruStore[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	order *list.List // front = most recently used
	items map[string]*list.Element
}

type lruEntry[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

func newLRUStore[V any](capacity int, ttl time.Duration) *lruStore[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruStore[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// get returns the stored value and marks it most recently used. An entry
// whose age exceeds the TTL is removed and reported as a miss.
func (s *lruStore[V]) get(key string) (V, bool) {
	var zero V

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*lruEntry[V])
	if s.ttl > 0 && s.now().Sub(entry.storedAt) > s.ttl {
		s.order.Remove(elem)
		delete(s.items, key)
		return zero, false
	}

	s.order.MoveToFront(elem)
	return entry.value, true
}

// put inserts or overwrites. Overwriting refreshes the entry's timestamp.
// When an insert would exceed capacity, the least-recently-used entry goes.
func (s *lruStore[V]) put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		entry := elem.Value.(*lruEntry[V])
		entry.value = value
		entry.storedAt = s.now()
		s.order.MoveToFront(elem)
		return
	}

	if s.order.Len() >= s.capacity {
		if oldest := s.order.Back(); oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*lruEntry[V]).key)
		}
	}

	elem := s.order.PushFront(&lruEntry[V]{
		key:      key,
		value:    value,
		storedAt: s.now(),
	})
	s.items[key] = elem
}

func (s *lruStore[V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.items = make(map[string]*list.Element)
}

func (s *lruStore[V]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
