package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"userapi/internal/adapter/httpapi"
	"userapi/internal/adapter/repository/decorator"
	pgrepo "userapi/internal/adapter/repository/postgres"
	sqliterepo "userapi/internal/adapter/repository/sqlite"
	"userapi/internal/adapter/scheduler"
	"userapi/internal/config"
	"userapi/internal/domain/user"
	"userapi/internal/platform/cache"
	"userapi/internal/platform/pg"
	"userapi/internal/platform/sqlite"
	"userapi/migrations"
)

const readyTimeout = 2 * time.Second

// store is the opened persistence layer plus what the rest of the app
// needs to know about it.
type store struct {
	repo    user.Repository
	db      pg.Pinger
	redis   *redis.Client
	jobs    []scheduler.Job
	closers []func() error
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*store, error) {
	s := &store{}
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DB.ConnectTimeout)
	defer cancel()

	var base user.Repository
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		info, err := pg.ApplyMigrations(cfg.DB.URL, migrations.FS, migrations.PostgresDir)
		if err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("migrations applied", "from", info.From, "to", info.To, "applied", info.Applied)

		opts := pg.DefaultPoolOptions()
		opts.Logger = log
		pool, err := pg.NewPool(connectCtx, cfg.DB.URL, opts)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		s.jobs = append(s.jobs, scheduler.PoolStatsJob("@every 1m",
			func() pg.Stats { return pg.StatsOf(pool) }, log))

		repo := pgrepo.New(pg.NewTxRunner(pool))
		base, s.db = repo, repo
	case config.DriverSQLite:
		db, err := sqlite.Open(connectCtx, cfg.DB.SQLitePath, sqlite.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		if err := sqlite.ApplyMigrations(db, migrations.FS, migrations.SQLiteDir); err != nil {
			s.close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		log.Info("sqlite ready", "path", cfg.DB.SQLitePath)

		repo := sqliterepo.New(db)
		base, s.db = repo, repo
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}

	s.repo = decorator.NewLogging(base, log.With("component", "repository"))

	if cfg.Cache.TTL <= 0 {
		return s, nil
	}
	var users cache.Cache[user.User]
	if cfg.Cache.RedisURL != "" {
		client, err := cache.OpenRedis(connectCtx, cfg.Cache.RedisURL, log)
		if err != nil {
			s.close()
			return nil, err
		}
		s.redis = client
		s.closers = append(s.closers, client.Close)
		users = cache.NewRedis[user.User](client, "userapi", cfg.Cache.TTL)
	} else {
		mem := cache.NewMemory[user.User](cfg.Cache.TTL)
		s.jobs = append(s.jobs, scheduler.SweepJob("user-cache-sweep", "@every 1m", mem, log))
		users = mem
	}
	s.repo = decorator.NewCached(s.repo, users, cfg.Cache.TTL, log)
	return s, nil
}

func (s *store) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
	s.closers = nil
}

func (s *store) checks() []httpapi.Check {
	out := []httpapi.Check{{Name: "database", Probe: pg.Check(s.db, readyTimeout)}}
	if s.redis != nil {
		client := s.redis
		out = append(out, httpapi.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	}
	return out
}
