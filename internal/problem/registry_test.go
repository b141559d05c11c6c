package problem_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"userapi/internal/problem"
	"userapi/internal/result"
	"userapi/internal/shared"
)

type lookupError struct{ key string }

func (e *lookupError) Error() string { return "missing key " + e.key }

type fieldErrors []string

func (e fieldErrors) Error() string { return fmt.Sprint([]string(e)) }

func TestResolveExceptionWithUncomparableError(t *testing.T) {
	reg := problem.NewDefaultBuilder().
		RegisterExceptionMapping(problem.Is(fieldErrors{"email"}), http.StatusUnprocessableEntity, "Unprocessable", "").
		Build()

	var resp problem.ExceptionResponse
	assert.NotPanics(t, func() { resp = reg.ResolveException(fieldErrors{"email"}) })
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}

func TestResolveStatusDefaults(t *testing.T) {
	reg := problem.NewDefaultBuilder().Build()

	tests := []struct {
		err  result.Error
		want int
	}{
		{result.Validation("", ""), http.StatusBadRequest},
		{result.NotFound("", ""), http.StatusNotFound},
		{result.Conflict("", ""), http.StatusConflict},
		{result.Unauthorized("", ""), http.StatusUnauthorized},
		{result.Forbidden("", ""), http.StatusForbidden},
		{result.Failure("", ""), http.StatusInternalServerError},
		{result.Unexpected("", ""), http.StatusInternalServerError},
		{result.Custom(418, "", ""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.ResolveStatus(tt.err))
		})
	}
}

func TestCustomKindTakesPrecedence(t *testing.T) {
	reg := problem.NewDefaultBuilder().
		RegisterCustomKindStatus(429, http.StatusTooManyRequests).
		RegisterErrorKindStatus(result.KindCustom, http.StatusTeapot).
		Build()

	assert.Equal(t, http.StatusTooManyRequests, reg.ResolveStatus(result.Custom(429, "", "")))
	// unmapped subkind falls back to the kind table
	assert.Equal(t, http.StatusTeapot, reg.ResolveStatus(result.Custom(1, "", "")))
}

func TestRegistrationIsIdempotent(t *testing.T) {
	once := problem.NewBuilder().
		RegisterCustomKindStatus(7, 422).
		RegisterExceptionMapping(problem.Is(shared.ErrConflict), 409, "Conflict", "").
		Build()
	twice := problem.NewBuilder().
		RegisterCustomKindStatus(7, 422).
		RegisterCustomKindStatus(7, 422).
		RegisterExceptionMapping(problem.Is(shared.ErrConflict), 409, "Conflict", "").
		RegisterExceptionMapping(problem.Is(shared.ErrConflict), 409, "Conflict", "").
		Build()

	e := result.Custom(7, "", "")
	assert.Equal(t, once.ResolveStatus(e), twice.ResolveStatus(e))
	assert.Equal(t, once.ResolveException(shared.ErrConflict), twice.ResolveException(shared.ErrConflict))
}

func TestLastWriteWins(t *testing.T) {
	reg := problem.NewBuilder().
		RegisterErrorKindStatus(result.KindNotFound, 404).
		RegisterErrorKindStatus(result.KindNotFound, 410).
		RegisterExceptionMapping(problem.Is(shared.ErrNotFound), 404, "Not Found", "").
		RegisterExceptionMapping(problem.Is(shared.ErrNotFound), 410, "Gone", "").
		Build()

	assert.Equal(t, 410, reg.ResolveStatus(result.NotFound("", "")))
	assert.Equal(t, "Gone", reg.ResolveException(shared.ErrNotFound).Title)
}

func TestBuildSnapshotIsImmutable(t *testing.T) {
	b := problem.NewBuilder().RegisterErrorKindStatus(result.KindConflict, 409)
	reg := b.Build()

	b.RegisterErrorKindStatus(result.KindConflict, 400)
	b.RegisterExceptionMapping(problem.Is(shared.ErrConflict), 409, "Conflict", "")

	assert.Equal(t, 409, reg.ResolveStatus(result.Conflict("", "")))
	assert.Equal(t, problem.DefaultExceptionResponse, reg.ResolveException(shared.ErrConflict))
}

func TestResolveExceptionDefaults(t *testing.T) {
	reg := problem.NewDefaultBuilder().Build()

	tests := []struct {
		name  string
		err   error
		want  int
		title string
	}{
		{"argument", fmt.Errorf("bind: %w", shared.ErrValidation), 400, "Bad Request"},
		{"invalid operation", shared.ErrConflict, 409, "Conflict"},
		{"unauthorized", shared.ErrUnauthorized, 401, "Unauthorized"},
		{"not implemented", shared.ErrNotImplemented, 501, "Not Implemented"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), 408, "Request Timeout"},
		{"lookup", shared.ErrNotFound, 404, "Not Found"},
		{"unmapped", errors.New("boom"), 500, "Internal Server Error"},
		{"nil", nil, 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.ResolveException(tt.err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.title, got.Title)
			assert.NotEmpty(t, got.Type)
		})
	}
}

func TestResolveExceptionOrdering(t *testing.T) {
	t.Run("first registered chain match wins", func(t *testing.T) {
		reg := problem.NewBuilder().
			RegisterExceptionMapping(problem.Is(shared.ErrConflict), 409, "Conflict", "").
			RegisterExceptionMapping(problem.Is(shared.ErrNotFound), 404, "Not Found", "").
			Build()

		joined := errors.Join(shared.ErrNotFound, shared.ErrConflict)
		assert.Equal(t, 409, reg.ResolveException(joined).Status)
	})

	t.Run("exact match beats earlier chain match", func(t *testing.T) {
		reg := problem.NewBuilder().
			RegisterExceptionMapping(problem.When("anything", func(error) bool { return true }), 500, "Catch", "").
			RegisterExceptionMapping(problem.As[*lookupError](), 404, "Not Found", "").
			Build()

		assert.Equal(t, 404, reg.ResolveException(&lookupError{key: "a"}).Status)
		assert.Equal(t, 500, reg.ResolveException(fmt.Errorf("wrapped: %w", &lookupError{})).Status)
	})

	t.Run("as matches through the chain", func(t *testing.T) {
		reg := problem.NewBuilder().
			RegisterExceptionMapping(problem.As[*lookupError](), 404, "Not Found", "").
			Build()

		got := reg.ResolveException(fmt.Errorf("wrapped: %w", &lookupError{}))
		assert.Equal(t, 404, got.Status)
		assert.Equal(t, problem.TypeURI(404), got.Type)
	})
}
