package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory[string](time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", "1", 0))
	require.NoError(t, m.Set(ctx, "b", "2", -1))

	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "b")
	assert.NoError(t, err)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestLoaderCachesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	l := NewLoader[int](NewMemory[int](time.Minute))

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.GetOrSet(ctx, "k", 0, load)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	v, err := l.GetOrSet(ctx, "k", 0, func(context.Context) (int, error) {
		t.Fatal("loader called on a hit")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory[int](time.Minute)
	l := NewLoader[int](mem)
	boom := errors.New("boom")

	_, err := l.GetOrSet(ctx, "k", 0, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, mem.Len())

	_, _ = l.GetOrSet(ctx, "k", 0, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, l.Forget(ctx, "k"))
	assert.Zero(t, mem.Len())
}

func TestRedisKeyPrefix(t *testing.T) {
	assert.Equal(t, "users:7", NewRedis[int](nil, "users", 0).key("7"))
	assert.Equal(t, "7", NewRedis[int](nil, "", 0).key("7"))
}
