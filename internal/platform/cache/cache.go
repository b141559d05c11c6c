// Package cache is a small generic TTL cache with in-memory and Redis
// backends.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound  = errors.New("cache: entry not found")
	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)

// Cache stores values by key. A zero ttl in Set means the backend default.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Loader deduplicates concurrent misses for the same key.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// GetOrSet returns the cached value or calls fn once per key and caches
// its result. Errors from fn are returned and nothing is cached. A cache
// read failure other than ErrNotFound is treated as a miss.
func (l *Loader[V]) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = l.cache.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Forget drops key from the cache.
func (l *Loader[V]) Forget(ctx context.Context, key string) error {
	l.group.Forget(key)
	return l.cache.Delete(ctx, key)
}

func marshal[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
