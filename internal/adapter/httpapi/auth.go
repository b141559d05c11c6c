package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"userapi/internal/adapter/auth"
	"userapi/internal/problem"
	"userapi/internal/result"
	"userapi/internal/usecase/errs"
)

// ClaimsKey holds the verified auth.Claims on the gin context.
const ClaimsKey = "claims"

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Authenticate requires a valid bearer token.
func Authenticate(v TokenVerifier, tr *problem.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			writeErrors(c, tr, []result.Error{errs.Unauthorized()})
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			writeErrors(c, tr, []result.Error{errs.UnauthorizedFor("access this resource")})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
