// Package pg содержит подключение к PostgreSQL: пул pgx, транзакции,
// миграции и проверку здоровья.
package pg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"userapi/pkg/retry"
)

// PoolOptions содержит настройки пула подключений.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	HealthCheckPeriod time.Duration
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	// ConnectTimeout ограничивает каждую попытку Ping при старте.
	ConnectTimeout time.Duration
	// Retry управляет повторами подключения, пока база поднимается.
	Retry retry.Config
	Logger *slog.Logger
}

// DefaultPoolOptions возвращает настройки по умолчанию для HTTP API.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:          20,
		MinConns:          2,
		HealthCheckPeriod: 30 * time.Second,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   10 * time.Minute,
		ConnectTimeout:    5 * time.Second,
		Retry:             retry.DefaultConfig(),
	}
}

// NewPool создаёт пул и дожидается, пока база начнёт отвечать.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", retry.Permanent(err))
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = opts.HealthCheckPeriod
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	policy := opts.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultConfig()
	}
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("postgres not ready", "attempt", attempt, "retry_in", delay, "err", err)
	}

	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
		return pool.Ping(pingCtx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	log.Info("postgres connected",
		"host", cfg.ConnConfig.Host,
		"database", cfg.ConnConfig.Database,
		"max_conns", cfg.MaxConns)
	return pool, nil
}
