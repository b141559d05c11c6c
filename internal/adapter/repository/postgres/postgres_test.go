package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/adapter/repository/repotest"
	"userapi/internal/domain/user"
	"userapi/internal/platform/pg"
	"userapi/internal/shared"
	"userapi/migrations"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("sp_get_user_by_id", pgx.ErrNoRows), user.ErrNotFound)

	dup := mapError("sp_insert_user", &pgconn.PgError{Code: uniqueViolation, Detail: "Key exists"})
	assert.True(t, shared.IsConflict(dup))
	assert.Contains(t, dup.Error(), "sp_insert_user")

	other := errors.New("connection reset")
	wrapped := mapError("sp_delete_user", other)
	assert.ErrorIs(t, wrapped, other)
	assert.False(t, shared.IsConflict(wrapped))
}

// TestRepositoryContract runs against a real database when
// TEST_DATABASE_URL points at an empty PostgreSQL schema.
func TestRepositoryContract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	_, err := pg.ApplyMigrations(dsn, migrations.FS, migrations.PostgresDir)
	require.NoError(t, err)

	pool, err := pg.NewPool(ctx, dsn, pg.DefaultPoolOptions())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repotest.Run(t, func(t *testing.T) user.Repository {
		_, err := pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
		require.NoError(t, err)
		return New(pg.NewTxRunner(pool))
	})
}
