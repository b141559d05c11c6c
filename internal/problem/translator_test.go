package problem_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/problem"
	"userapi/internal/result"
	"userapi/internal/shared"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

func newTranslator(dev bool) *problem.Translator {
	reg := problem.NewDefaultBuilder().RegisterCustomKindStatus(429, http.StatusTooManyRequests).Build()
	return problem.NewTranslator(reg,
		problem.WithDevelopment(dev),
		problem.WithClock(func() time.Time { return fixedNow }),
	)
}

var req = problem.Request{Path: "/api/users/7", TraceID: "trace-1"}

func TestFromErrorsNotFound(t *testing.T) {
	d := newTranslator(false).FromErrors(req, []result.Error{
		result.NotFound("User.NotFound", "User with ID '7' was not found.", result.WithMetadata("userId", 7)),
	})

	assert.Equal(t, http.StatusNotFound, d.Status)
	assert.Equal(t, "User with ID '7' was not found.", d.Title)
	assert.Equal(t, "/api/users/7", d.Instance)
	assert.Equal(t, "trace-1", d.TraceID)
	assert.Equal(t, time.UTC, d.Timestamp.Location())
	assert.Equal(t, "User.NotFound", d.Extensions["code"])
}

func TestFromErrorsValidationGroupsByField(t *testing.T) {
	d := newTranslator(false).FromErrors(req, []result.Error{
		result.Validation("NotEmptyValidator", "Email is required", result.WithField("Email")),
		result.Validation("GreaterThanValidator", "Page must be greater than 0", result.WithField("Page")),
		result.Validation("EmailValidator", "Email is invalid", result.WithField("Email")),
		result.Validation("User.InvalidCredentials", "The provided credentials are invalid."),
	})

	assert.Equal(t, http.StatusBadRequest, d.Status)
	assert.Equal(t, problem.ValidationTitle, d.Title)
	assert.Equal(t, map[string][]string{
		"email":                   {"Email is required", "Email is invalid"},
		"page":                    {"Page must be greater than 0"},
		"User.InvalidCredentials": {"The provided credentials are invalid."},
	}, d.Errors)
}

func TestFromErrorsFirstWins(t *testing.T) {
	tr := newTranslator(false)

	d := tr.FromErrors(req, []result.Error{
		result.NotFound("User.NotFound", "User not found."),
		result.Conflict("User.AlreadyExists", "exists"),
	})
	assert.Equal(t, http.StatusNotFound, d.Status)
	assert.Equal(t, "User not found.", d.Title)

	mixed := tr.FromErrors(req, []result.Error{
		result.Validation("v", "first", result.WithField("Email")),
		result.Conflict("c", "second"),
	})
	assert.Equal(t, http.StatusBadRequest, mixed.Status)
	assert.Equal(t, "first", mixed.Title)
	assert.Empty(t, mixed.Errors)
}

func TestFromErrorsCustomKind(t *testing.T) {
	d := newTranslator(false).FromErrors(req, []result.Error{
		result.Custom(429, "General.RateLimitExceeded", "Too many requests."),
	})
	assert.Equal(t, http.StatusTooManyRequests, d.Status)
}

func TestFromErrorsEmpty(t *testing.T) {
	d := newTranslator(false).FromErrors(req, nil)
	assert.Equal(t, http.StatusInternalServerError, d.Status)
	assert.NotEmpty(t, d.Title)
}

func TestFromException(t *testing.T) {
	err := errors.New("pq: relation users does not exist")

	prod := newTranslator(false).FromException(req, err)
	assert.Equal(t, http.StatusInternalServerError, prod.Status)
	assert.Equal(t, "Internal Server Error", prod.Title)
	assert.Equal(t, problem.GenericDetail, prod.Detail)

	dev := newTranslator(true).FromException(req, err)
	assert.Equal(t, err.Error(), dev.Detail)

	mapped := newTranslator(false).FromException(req, shared.MarkKind(err, shared.KindNotImplemented))
	assert.Equal(t, http.StatusNotImplemented, mapped.Status)
}

func TestDetailsJSON(t *testing.T) {
	d := newTranslator(false).FromErrors(req, []result.Error{
		result.Validation("v", "Email is required", result.WithField("Email")),
	})
	d.Extensions = map[string]any{"status": "ignored", "extra": 1}

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, float64(400), got["status"])
	assert.Equal(t, problem.ValidationType, got["type"])
	assert.Equal(t, problem.ValidationTitle, got["title"])
	assert.Equal(t, problem.ValidationDetail, got["detail"])
	assert.Equal(t, "/api/users/7", got["instance"])
	assert.Equal(t, "trace-1", got["traceId"])
	assert.Equal(t, "2025-03-01T11:00:00Z", got["timestamp"])
	assert.Equal(t, float64(1), got["extra"])
	assert.Equal(t, map[string]any{"email": []any{"Email is required"}}, got["errors"])
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"Email":       "email",
		"page":        "page",
		"UserID":      "userID",
		"ID":          "id",
		"URLValue":    "urlValue",
		"Address.ZIP": "address.zip",
		"PageSize":    "pageSize",
	}
	for in, want := range tests {
		assert.Equal(t, want, problem.CamelCase(in), in)
	}
}
