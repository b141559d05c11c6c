package decorator

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"userapi/internal/domain/user"
	"userapi/internal/platform/cache"
)

// Cached serves GetByID from a cache and evicts on writes.
// Lists are never cached. Cached users carry no password hash; credentials
// are only read through GetByEmail, which bypasses the cache.
type Cached struct {
	user.Repository
	users *cache.Loader[user.User]
	ttl   time.Duration
	log   *slog.Logger
}

func NewCached(next user.Repository, c cache.Cache[user.User], ttl time.Duration, log *slog.Logger) *Cached {
	return &Cached{Repository: next, users: cache.NewLoader(c), ttl: ttl, log: log}
}

func key(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func (c *Cached) GetByID(ctx context.Context, id int64) (user.User, error) {
	return c.users.GetOrSet(ctx, key(id), c.ttl, func(ctx context.Context) (user.User, error) {
		u, err := c.Repository.GetByID(ctx, id)
		u.PasswordHash = ""
		return u, err
	})
}

func (c *Cached) Update(ctx context.Context, u user.User) error {
	err := c.Repository.Update(ctx, u)
	c.evict(ctx, u.UserID)
	return err
}

func (c *Cached) Delete(ctx context.Context, id int64) error {
	err := c.Repository.Delete(ctx, id)
	c.evict(ctx, id)
	return err
}

func (c *Cached) evict(ctx context.Context, id int64) {
	if err := c.users.Forget(ctx, key(id)); err != nil {
		c.log.WarnContext(ctx, "user cache eviction failed", "user_id", id, "err", err)
	}
}

var _ user.Repository = (*Cached)(nil)
