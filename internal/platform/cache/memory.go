package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a process-local cache. Expired entries are skipped on read
// and removed by Sweep.
type Memory[V any] struct {
	mu         sync.Mutex
	items      map[string]entry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMemory[V any](defaultTTL time.Duration) *Memory[V] {
	return &Memory[V]{
		items:      make(map[string]entry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok || m.expired(e) {
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory[V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.items {
		if m.expired(e) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

var _ Cache[any] = (*Memory[any])(nil)
