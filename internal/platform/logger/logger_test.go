package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileOutputHonoursLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "api.log")
	log := New(Options{Env: "prod", ConsoleLevel: "error", FileLevel: "info", File: logFile, App: "userapi"})

	log.Debug("debug message")
	log.Info("info message", "password", "hunter22")
	require.NoError(t, Close(log))

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	out := string(content)
	assert.NotContains(t, out, "debug message")
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, `"app":"userapi"`)
	assert.NotContains(t, out, "hunter22")
}

func TestClose_UnknownLogger(t *testing.T) {
	assert.NoError(t, Close(slog.Default()))
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil), SensitiveKeys))

	log.With("token", "abc").Info("login",
		"Authorization", "Bearer abc.def.ghi",
		"header", "Bearer xyz",
		"jwt", "eyJhbGciOi.eyJzdWIiOi.c2ln",
		"email", "ada@example.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "[REDACTED]", rec["token"])
	assert.Equal(t, "[REDACTED]", rec["Authorization"])
	assert.Equal(t, "[REDACTED]", rec["header"])
	assert.Equal(t, "[REDACTED]", rec["jwt"])
	assert.Equal(t, "ada@example.com", rec["email"])
}

func TestContextHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	log.InfoContext(WithRequestID(context.Background(), "req-1"), "with id")
	log.InfoContext(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"request_id":"req-1"`)
	assert.NotContains(t, lines[1], "request_id")
}

func TestRequestID(t *testing.T) {
	_, ok := RequestID(context.Background())
	assert.False(t, ok)
	_, ok = RequestID(WithRequestID(context.Background(), ""))
	assert.False(t, ok)
	id, ok := RequestID(WithRequestID(context.Background(), "r"))
	assert.True(t, ok)
	assert.Equal(t, "r", id)
}

func TestMultiHandler(t *testing.T) {
	var info, errs bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).WithGroup("req").With("id", 1)

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	log.Info("first")
	log.Error("second")

	assert.Contains(t, info.String(), "first")
	assert.Contains(t, info.String(), "req.id=1")
	assert.Contains(t, info.String(), "second")
	assert.NotContains(t, errs.String(), "first")
	assert.Contains(t, errs.String(), "second")
}

func TestRedactingHandlerNestedGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil), SensitiveKeys))

	log.Info("register", slog.Group("request", "email", "ada@example.com", "password", "hunter22"))

	var rec struct {
		Request map[string]string `json:"request"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "[REDACTED]", rec.Request["password"])
	assert.Equal(t, "ada@example.com", rec.Request["email"])
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerKeepsWritingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		failingHandler{slog.NewTextHandler(io.Discard, nil)},
		slog.NewTextHandler(&buf, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))

	assert.ErrorContains(t, err, "sink down")
	assert.Contains(t, buf.String(), "still here")
}
