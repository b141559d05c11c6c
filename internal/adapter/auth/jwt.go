package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"userapi/internal/domain/user"
	"userapi/internal/shared"
	authuc "userapi/internal/usecase/auth"
)

// JWTOptions configures token signing.
type JWTOptions struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// Claims are the registered claims plus the user profile.
type Claims struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// JWTIssuer signs and verifies HS256 tokens.
type JWTIssuer struct {
	opts JWTOptions
	now  func() time.Time
}

func NewJWTIssuer(opts JWTOptions) *JWTIssuer {
	return &JWTIssuer{opts: opts, now: time.Now}
}

// Issue signs a token for u.
func (j *JWTIssuer) Issue(u user.User) (authuc.Token, error) {
	now := j.now()
	exp := now.Add(j.opts.Expiry)
	claims := Claims{
		GivenName:  u.FirstName,
		FamilyName: u.LastName,
		Email:      u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.UserID, 10),
			Issuer:    j.opts.Issuer,
			Audience:  jwt.ClaimStrings{j.opts.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.opts.Secret))
	if err != nil {
		return authuc.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return authuc.Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify parses and validates a token. Failures are marked unauthorized.
func (j *JWTIssuer) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return []byte(j.opts.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.opts.Issuer),
		jwt.WithAudience(j.opts.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return Claims{}, shared.MarkKind(err, shared.KindUnauthorized)
	}
	return claims, nil
}
