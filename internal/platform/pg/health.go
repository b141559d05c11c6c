package pg

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger реализуется пулом pgx; выделен для тестов.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check возвращает функцию проверки готовности с таймаутом.
func Check(p Pinger, timeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Ping(ctx)
	}
}

// Stats снимок состояния пула для периодического лога.
type Stats struct {
	Total        int32
	Idle         int32
	Acquired     int32
	Max          int32
	AcquireCount int64
	EmptyAcquire int64
}

func StatsOf(pool *pgxpool.Pool) Stats {
	s := pool.Stat()
	return Stats{
		Total:        s.TotalConns(),
		Idle:         s.IdleConns(),
		Acquired:     s.AcquiredConns(),
		Max:          s.MaxConns(),
		AcquireCount: s.AcquireCount(),
		EmptyAcquire: s.EmptyAcquireCount(),
	}
}

// LogValue позволяет писать Stats в slog одной группой.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", int(s.Total)),
		slog.Int("idle", int(s.Idle)),
		slog.Int("acquired", int(s.Acquired)),
		slog.Int("max", int(s.Max)),
		slog.Int64("acquire_count", s.AcquireCount),
		slog.Int64("empty_acquire", s.EmptyAcquire),
	)
}

// Saturated сообщает, что все соединения заняты.
func (s Stats) Saturated() bool {
	return s.Max > 0 && s.Acquired >= s.Max
}
