package problem

import (
	"context"
	"net/http"

	"userapi/internal/result"
	"userapi/internal/shared"
)

// NewDefaultBuilder returns a builder seeded with the standard kind table
// and exception rules. Callers may override any entry before Build.
func NewDefaultBuilder() *Builder {
	b := NewBuilder().
		RegisterErrorKindStatus(result.KindConflict, http.StatusConflict).
		RegisterErrorKindStatus(result.KindValidation, http.StatusBadRequest).
		RegisterErrorKindStatus(result.KindNotFound, http.StatusNotFound).
		RegisterErrorKindStatus(result.KindUnauthorized, http.StatusUnauthorized).
		RegisterErrorKindStatus(result.KindForbidden, http.StatusForbidden).
		RegisterErrorKindStatus(result.KindFailure, http.StatusInternalServerError).
		RegisterErrorKindStatus(result.KindUnexpected, http.StatusInternalServerError)

	b.RegisterExceptionMapping(Is(shared.ErrValidation), http.StatusBadRequest,
		"Bad Request", "https://tools.ietf.org/html/rfc7231#section-6.5.1")
	b.RegisterExceptionMapping(Is(shared.ErrConflict), http.StatusConflict,
		"Conflict", "https://tools.ietf.org/html/rfc7231#section-6.5.8")
	b.RegisterExceptionMapping(Is(shared.ErrUnauthorized), http.StatusUnauthorized,
		"Unauthorized", "https://tools.ietf.org/html/rfc7235#section-3.1")
	b.RegisterExceptionMapping(Is(shared.ErrForbidden), http.StatusForbidden,
		"Forbidden", "https://tools.ietf.org/html/rfc7231#section-6.5.3")
	b.RegisterExceptionMapping(Is(shared.ErrNotImplemented), http.StatusNotImplemented,
		"Not Implemented", "https://tools.ietf.org/html/rfc7231#section-6.6.2")
	b.RegisterExceptionMapping(timeout, http.StatusRequestTimeout,
		"Request Timeout", "https://tools.ietf.org/html/rfc7231#section-6.5.7")
	b.RegisterExceptionMapping(Is(shared.ErrNotFound), http.StatusNotFound,
		"Not Found", "https://tools.ietf.org/html/rfc7231#section-6.5.4")
	return b
}

var timeout = Matcher{
	key: "timeout",
	exact: func(err error) bool {
		return err == shared.ErrTimeout || err == context.DeadlineExceeded
	},
	match: shared.IsTimeout,
}
