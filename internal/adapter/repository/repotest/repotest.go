// Package repotest is a behavioural test suite shared by the user
// repository implementations.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/domain/user"
	"userapi/internal/shared"
)

// NewUser builds an unsaved user with the given email.
func NewUser(t *testing.T, first, email string) user.User {
	t.Helper()
	u, err := user.New(user.Profile{
		FirstName:   first,
		LastName:    "Tester",
		Email:       email,
		PhoneNumber: "+100000",
		DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}, "hash", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return u
}

// Run exercises repo against the user.Repository contract. newRepo must
// return an empty repository on every call.
func Run(t *testing.T, newRepo func(t *testing.T) user.Repository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		u := NewUser(t, "Ada", "ada@example.com")

		id, err := repo.Create(ctx, u)
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.UserID)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "Ada", got.FirstName)
		assert.True(t, got.DateOfBirth.Equal(u.DateOfBirth))

		byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.UserID)
		assert.Equal(t, "hash", byEmail.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, user.ErrNotFound)
		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 404), user.ErrNotFound)

		ghost := NewUser(t, "Ghost", "ghost@example.com")
		ghost.UserID = 404
		assert.ErrorIs(t, repo.Update(ctx, ghost), user.ErrNotFound)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(ctx, NewUser(t, "Ada", "ada@example.com"))
		require.NoError(t, err)

		exists, err := repo.EmailExists(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = repo.Create(ctx, NewUser(t, "Eve", "ada@example.com"))
		assert.True(t, shared.IsConflict(err), "got %v", err)
	})

	t.Run("update and delete", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Create(ctx, NewUser(t, "Ada", "ada@example.com"))
		require.NoError(t, err)

		u, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		u.Update(user.Profile{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}, time.Now())
		u.PasswordHash = ""
		require.NoError(t, repo.Update(ctx, u))

		byEmail, err := repo.GetByEmail(ctx, "grace@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash", byEmail.PasswordHash, "update never touches credentials")

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.FirstName)
		assert.False(t, got.IsActive)
		assert.NotNil(t, got.UpdatedAt)

		require.NoError(t, repo.Delete(ctx, id))
		_, err = repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("list pages and sorts", func(t *testing.T) {
		repo := newRepo(t)
		for i, name := range []string{"Carol", "Alice", "Bob", "Dave", "Erin"} {
			_, err := repo.Create(ctx, NewUser(t, name, fmt.Sprintf("u%d@example.com", i)))
			require.NoError(t, err)
		}

		page, err := repo.List(ctx, user.ListQuery{Page: 1, PageSize: 2, SortBy: "firstName"})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		require.Len(t, page.Users, 2)
		assert.Equal(t, "Alice", page.Users[0].FirstName)
		assert.Equal(t, "Bob", page.Users[1].FirstName)

		last, err := repo.List(ctx, user.ListQuery{Page: 3, PageSize: 2, SortBy: "firstName", Descending: true})
		require.NoError(t, err)
		require.Len(t, last.Users, 1)
		assert.Equal(t, "Alice", last.Users[0].FirstName)

		beyond, err := repo.List(ctx, user.ListQuery{Page: 9, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, beyond.Users)
		assert.Equal(t, 5, beyond.Total)
	})
}
