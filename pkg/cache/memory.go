package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time // zero means never
	value     V
	key       string
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-memory cache with TTL expiration and optional LRU bounds.
// The most recently used entries sit at the front of the list.
type Memory[V any] struct {
	items   map[string]*list.Element
	lru     *list.List
	opts    *memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates an in-memory cache and starts its janitor.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

// SetEvictCallback registers fn to be called for every entry that leaves the
// cache: LRU eviction, expiration, Delete and Close. Overwriting a key with
// Set does not count as an eviction.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

// Get returns the value for key and marks it as recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	elem, ok := m.items[key]
	if !ok {
		m.mu.Unlock()
		return zero, ErrNotFound
	}
	e := elem.Value.(*entry[V])
	if e.expired(time.Now()) {
		evicted := m.remove(elem)
		m.mu.Unlock()
		m.notify(evicted)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	m.mu.Unlock()

	return e.value, nil
}

// Set stores value under key.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	expiresAt := m.deadline(ttl)
	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		m.mu.Unlock()
		return nil
	}

	var evicted []*entry[V]
	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if back := m.lru.Back(); back != nil {
			evicted = m.remove(back)
		}
	}
	m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	m.mu.Unlock()

	m.notify(evicted)
	return nil
}

// Touch extends the lifetime of an existing entry without replacing its value.
// It reports whether the key was present.
func (m *Memory[V]) Touch(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok || m.closed {
		return false
	}
	e := elem.Value.(*entry[V])
	if e.expired(time.Now()) {
		return false
	}
	e.expiresAt = m.deadline(ttl)
	m.lru.MoveToFront(elem)
	return true
}

// Delete removes key. Missing keys are not an error.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	var evicted []*entry[V]
	if elem, ok := m.items[key]; ok {
		evicted = m.remove(elem)
	}
	m.mu.Unlock()

	m.notify(evicted)
	return nil
}

// Len returns the number of stored entries, including expired ones the
// janitor has not swept yet.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor and evicts every entry. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)
	evicted := m.drain()
	m.mu.Unlock()

	m.notify(evicted)
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory[V]) sweep() {
	now := time.Now()

	m.mu.Lock()
	var evicted []*entry[V]
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			evicted = append(evicted, m.remove(elem)...)
		}
		elem = prev
	}
	m.mu.Unlock()

	m.notify(evicted)
}

func (m *Memory[V]) deadline(ttl time.Duration) time.Time {
	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	if ttl < 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// remove unlinks elem. Caller must hold the mutex.
func (m *Memory[V]) remove(elem *list.Element) []*entry[V] {
	m.lru.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(m.items, e.key)
	return []*entry[V]{e}
}

// drain empties the cache. Caller must hold the mutex.
func (m *Memory[V]) drain() []*entry[V] {
	evicted := make([]*entry[V], 0, len(m.items))
	for elem := m.lru.Back(); elem != nil; elem = elem.Prev() {
		evicted = append(evicted, elem.Value.(*entry[V]))
	}
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return evicted
}

func (m *Memory[V]) notify(evicted []*entry[V]) {
	if len(evicted) == 0 {
		return
	}
	m.mu.Lock()
	fn := m.onEvict
	m.mu.Unlock()
	if fn == nil {
		return
	}
	for _, e := range evicted {
		fn(e.key, e.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
