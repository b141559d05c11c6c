package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/adapter/repository/memory"
	"userapi/internal/dispatch"
	"userapi/internal/domain/user"
	"userapi/internal/result"
	"userapi/internal/usecase/auth"
	"userapi/internal/validation"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, h string) bool       { return h == "hashed:"+p }

type stubIssuer struct{ err error }

func (s stubIssuer) Issue(u user.User) (auth.Token, error) {
	if s.err != nil {
		return auth.Token{}, s.err
	}
	return auth.Token{Value: "token-for-" + u.Email, ExpiresAt: time.Unix(0, 0)}, nil
}

func setup(t *testing.T, repo user.Repository, issuer auth.TokenIssuer) *dispatch.Dispatcher {
	t.Helper()
	b := dispatch.NewBuilder()
	auth.RegisterHandlers(b, auth.NewHandlers(repo, plainHasher{}, issuer, nil), validation.New())
	d, err := b.Build(auth.Requirements()...)
	require.NoError(t, err)
	return d
}

func outcome(r result.Result[auth.Result]) (auth.Result, []result.Error) {
	var (
		v    auth.Result
		errs []result.Error
	)
	r.Switch(func(res auth.Result) { v = res }, func(e []result.Error) { errs = e })
	return v, errs
}

var alice = auth.Register{
	FirstName:   "Alice",
	LastName:    "Liddell",
	Email:       "alice@example.com",
	Password:    "correct horse",
	DateOfBirth: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	d := setup(t, repo, stubIssuer{})

	res, err := dispatch.Send[auth.Register, auth.Result](ctx, d, alice)
	require.NoError(t, err)
	reg, errs := outcome(res)
	require.Empty(t, errs)
	assert.Equal(t, "token-for-alice@example.com", reg.Token)
	assert.Equal(t, int64(1), reg.User.UserID)

	stored, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "hashed:correct horse", stored.PasswordHash)

	res, err = dispatch.Send[auth.Login, auth.Result](ctx, d, auth.Login{Email: alice.Email, Password: alice.Password})
	require.NoError(t, err)
	login, errs := outcome(res)
	require.Empty(t, errs)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	d := setup(t, memory.New(), stubIssuer{})

	_, err := dispatch.Send[auth.Register, auth.Result](ctx, d, alice)
	require.NoError(t, err)

	res, err := dispatch.Send[auth.Register, auth.Result](ctx, d, alice)
	require.NoError(t, err)
	_, errs := outcome(res)
	require.Len(t, errs, 1)
	assert.Equal(t, result.KindConflict, errs[0].Kind)
	assert.Equal(t, "A user with email 'alice@example.com' already exists.", errs[0].Description)
}

func TestRegisterValidation(t *testing.T) {
	req := alice
	req.Password = "short"
	res, err := dispatch.Send[auth.Register, auth.Result](context.Background(), setup(t, memory.New(), stubIssuer{}), req)
	require.NoError(t, err)
	_, errs := outcome(res)
	require.Len(t, errs, 1)
	assert.Equal(t, "Password must be at least 8 characters long.", errs[0].Description)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	d := setup(t, memory.New(), stubIssuer{})
	_, err := dispatch.Send[auth.Register, auth.Result](ctx, d, alice)
	require.NoError(t, err)

	for _, req := range []auth.Login{
		{Email: "nobody@example.com", Password: "whatever"},
		{Email: alice.Email, Password: "wrong password"},
	} {
		res, err := dispatch.Send[auth.Login, auth.Result](ctx, d, req)
		require.NoError(t, err)
		_, errs := outcome(res)
		require.Len(t, errs, 1)
		assert.Equal(t, "User.InvalidCredentials", errs[0].Code)
		assert.Equal(t, result.KindValidation, errs[0].Kind)
	}
}

func TestLoginDeactivated(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	d := setup(t, repo, stubIssuer{})
	_, err := dispatch.Send[auth.Register, auth.Result](ctx, d, alice)
	require.NoError(t, err)

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, repo.Update(ctx, u))

	res, err := dispatch.Send[auth.Login, auth.Result](ctx, d, auth.Login{Email: alice.Email, Password: alice.Password})
	require.NoError(t, err)
	_, errs := outcome(res)
	require.Len(t, errs, 1)
	assert.Equal(t, result.KindUnauthorized, errs[0].Kind)
}

func TestIssuerFailureEscapes(t *testing.T) {
	d := setup(t, memory.New(), stubIssuer{err: errors.New("key unavailable")})
	_, err := dispatch.Send[auth.Register, auth.Result](context.Background(), d, alice)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "issue token"))
}
