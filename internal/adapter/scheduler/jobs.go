package scheduler

import (
	"context"
	"log/slog"

	"userapi/internal/platform/pg"
)

// Sweeper удаляет просроченные записи и сообщает их количество.
// Реализуется httpapi.RateLimiter и cache.Memory.
type Sweeper interface {
	Sweep() int
}

// SweepJob периодически очищает s.
func SweepJob(name, schedule string, s Sweeper, log *slog.Logger) Job {
	return Job{
		Name:     name,
		Schedule: schedule,
		Run: func(context.Context) error {
			if n := s.Sweep(); n > 0 {
				log.Debug("expired entries removed", "job", name, "removed", n)
			}
			return nil
		},
	}
}

// PoolStatsJob логирует снимок статистики пула и предупреждает,
// когда все соединения заняты.
func PoolStatsJob(schedule string, stats func() pg.Stats, log *slog.Logger) Job {
	return Job{
		Name:     "pg-pool-stats",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			st := stats()
			if st.Saturated() {
				log.WarnContext(ctx, "postgres pool saturated", "pool", st)
				return nil
			}
			log.DebugContext(ctx, "postgres pool", "pool", st)
			return nil
		},
	}
}
