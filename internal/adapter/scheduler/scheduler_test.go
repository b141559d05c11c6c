package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/platform/pg"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New(context.Background(), Config{Logger: discard()})
	defer s.Stop(context.Background())

	var counter int64
	_, err := s.Add(Job{Name: "tick", Schedule: "@every 1s", Run: func(context.Context) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}})
	require.NoError(t, err)
	s.Start()

	require.Eventually(t, func() bool { return atomic.LoadInt64(&counter) >= 1 },
		3*time.Second, 20*time.Millisecond, "задача должна выполниться хотя бы один раз")
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(context.Background(), Config{Logger: discard()})

	_, err := s.Add(Job{Name: "bad", Schedule: "invalid schedule", Run: func(context.Context) error { return nil }})
	assert.ErrorContains(t, err, `"bad"`)

	_, err = s.Add(Job{Name: "empty", Schedule: "@every 1s"})
	assert.Error(t, err)
}

func TestScheduler_ErrorsAndPanicsReachHook(t *testing.T) {
	var mu sync.Mutex
	got := map[string]error{}
	s := New(context.Background(), Config{
		Logger: discard(),
		Hooks: Hooks{OnFinish: func(name string, _ time.Duration, err error) {
			mu.Lock()
			got[name] = err
			mu.Unlock()
		}},
	})
	defer s.Stop(context.Background())

	boom := errors.New("boom")
	_, err := s.Add(Job{Name: "fails", Schedule: "@every 1s", Run: func(context.Context) error { return boom }})
	require.NoError(t, err)
	_, err = s.Add(Job{Name: "panics", Schedule: "@every 1s", Run: func(context.Context) error { panic("oops") }})
	require.NoError(t, err)
	s.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, got["fails"], boom)
	assert.ErrorContains(t, got["panics"], "panic: oops")
}

func TestScheduler_TimeoutCancelsJob(t *testing.T) {
	done := make(chan error, 1)
	s := New(context.Background(), Config{Logger: discard()})
	defer s.Stop(context.Background())

	_, err := s.Add(Job{Name: "slow", Schedule: "@every 1s", Timeout: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			select {
			case done <- ctx.Err():
			default:
			}
			return ctx.Err()
		}})
	require.NoError(t, err)
	s.Start()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(3 * time.Second):
		t.Fatal("задача не получила отмену по таймауту")
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := New(context.Background(), Config{Logger: discard()})
	s.Start()
	s.Start()

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	s.Start()
	assert.Empty(t, s.cron.Entries())
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	s := New(context.Background(), Config{Logger: discard()})
	_, err := s.Add(Job{Name: "blocking", Schedule: "@every 1s", Run: func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil
	}})
	require.NoError(t, err)
	s.Start()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("задача не запустилась")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

type countingSweeper struct{ n int }

func (c *countingSweeper) Sweep() int { c.n++; return 3 }

func TestSweepJob(t *testing.T) {
	var logs syncBuffer
	sw := &countingSweeper{}
	job := SweepJob("ratelimit-sweep", "@every 1m", sw,
		slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, sw.n)
	assert.Contains(t, logs.String(), "removed=3")
	assert.Equal(t, "ratelimit-sweep", job.Name)
}

func TestPoolStatsJob(t *testing.T) {
	var logs syncBuffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	stats := pg.Stats{Total: 4, Acquired: 4, Max: 4}

	job := PoolStatsJob("@every 1m", func() pg.Stats { return stats }, log)
	require.NoError(t, job.Run(context.Background()))
	assert.Contains(t, logs.String(), "postgres pool saturated")

	stats = pg.Stats{Total: 4, Idle: 3, Acquired: 1, Max: 4}
	before := logs.String()
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, before, logs.String(), "info-level logger drops the debug snapshot")
}
