package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"userapi/pkg/retry"
)

// Redis stores JSON-encoded values under prefix:key.
type Redis[V any] struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

func NewRedis[V any](client redis.UniversalClient, prefix string, defaultTTL time.Duration) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return unmarshal[V](data)
}

// Set treats a negative ttl as no expiry.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

var _ Cache[any] = (*Redis[any])(nil)

// OpenRedis parses a redis:// URL and waits until the server answers PING.
func OpenRedis(ctx context.Context, url string, log *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	policy := retry.DefaultConfig()
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("redis not ready", "attempt", attempt, "retry_in", delay, "err", err)
	}
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
