package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"userapi/internal/domain/user"
	"userapi/internal/shared"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify("s3cret-pass", hash))
	assert.False(t, h.Verify("other", hash))
	assert.False(t, h.Verify("s3cret-pass", "not-a-hash"))
}

func newIssuer(now time.Time) *JWTIssuer {
	j := NewJWTIssuer(JWTOptions{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "userapi",
		Audience: "userapi-clients",
		Expiry:   time.Hour,
	})
	j.now = func() time.Time { return now }
	return j
}

func TestJWTRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	j := newIssuer(now)
	u := user.User{UserID: 42, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	tok, err := j.Issue(u)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)

	claims, err := j.Verify(tok.Value)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Ada", claims.GivenName)
	assert.Equal(t, "Lovelace", claims.FamilyName)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTRejects(t *testing.T) {
	now := time.Now()
	tok, err := newIssuer(now).Issue(user.User{UserID: 1})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := newIssuer(now.Add(2 * time.Hour)).Verify(tok.Value)
		assert.True(t, shared.IsUnauthorized(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTIssuer(JWTOptions{Secret: "ffffffffffffffffffffffffffffffff", Issuer: "userapi", Audience: "userapi-clients"})
		_, err := other.Verify(tok.Value)
		assert.True(t, shared.IsUnauthorized(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newIssuer(now).Verify("not.a.token")
		assert.True(t, shared.IsUnauthorized(err))
	})
}
