package user_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/domain/user"
)

func TestNew(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 7200))
	u, err := user.New(user.Profile{FirstName: "Ada", Email: "ada@example.com", IsActive: true}, "hash", now)
	require.NoError(t, err)

	assert.Equal(t, 7, int(u.ID.Version()))
	assert.Equal(t, "hash", u.PasswordHash)
	assert.True(t, u.IsActive)
	assert.Equal(t, now.UTC(), u.CreatedAt)
	assert.Nil(t, u.UpdatedAt)
}

func TestLifecycle(t *testing.T) {
	now := time.Now()
	u, err := user.New(user.Profile{FirstName: "Ada", IsActive: true}, "", now)
	require.NoError(t, err)

	u.Update(user.Profile{FirstName: "Grace", Email: "g@example.com"}, now)
	assert.Equal(t, "Grace", u.FirstName)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.UpdatedAt)
	assert.Equal(t, now.UTC(), *u.UpdatedAt)
}

func TestListQuery(t *testing.T) {
	assert.Equal(t, 0, user.ListQuery{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, user.ListQuery{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 0, user.ListQuery{Page: 0, PageSize: 10}.Offset())

	assert.Equal(t, "email", user.SortColumn("email"))
	assert.Equal(t, "user_id", user.SortColumn("password_hash; drop table users"))
}
