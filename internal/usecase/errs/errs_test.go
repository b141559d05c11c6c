package errs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"userapi/internal/result"
	"userapi/internal/usecase/errs"
)

func TestCatalog(t *testing.T) {
	tests := []struct {
		name string
		err  result.Error
		kind result.Kind
		code string
		desc string
	}{
		{"not found by id", errs.UserNotFoundByID(7), result.KindNotFound, "User.NotFound", "User with ID '7' was not found."},
		{"invalid credentials", errs.InvalidCredentials(), result.KindValidation, "User.InvalidCredentials", "The provided credentials are invalid."},
		{"already exists", errs.UserAlreadyExistsByEmail("a@b.c"), result.KindConflict, "User.AlreadyExists", "A user with email 'a@b.c' already exists."},
		{"already exists generic", errs.UserAlreadyExists(), result.KindConflict, "User.AlreadyExists", "A user with the given email already exists."},
		{"unauthorized", errs.Unauthorized(), result.KindUnauthorized, "User.Unauthorized", "You are not authorized to perform this action."},
		{"unauthorized for", errs.UnauthorizedFor("delete users"), result.KindUnauthorized, "User.Unauthorized", "You are not authorized to delete users."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.desc, tt.err.Description)
		})
	}
}

func TestRateLimitIsCustomKind(t *testing.T) {
	e := errs.RateLimitExceeded(30)
	assert.Equal(t, result.KindCustom, e.Kind)
	assert.Equal(t, errs.KindRateLimited, e.Custom)
	v, ok := e.Metadata.Get("retryAfterSeconds")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	assert.Equal(t, "Too many requests. Please try again later.", errs.RateLimitExceeded(0).Description)
}

func TestNotFoundCarriesUserID(t *testing.T) {
	v, ok := errs.UserNotFoundByID(42).Metadata.Get("userId")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)
}
