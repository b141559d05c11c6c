// Package logger builds the service slog.Logger: tinted console output,
// an optional rotating JSON file, optional Sentry forwarding, redaction of
// credentials and request-scoped attributes taken from the context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options defines parameters for logger creation.
type Options struct {
	Env          string
	ConsoleLevel string // Level for console output (default: info)
	FileLevel    string // Level for file output (default: debug)
	File         string
	App          string
	// SentryDSN enables forwarding of warnings and errors to Sentry.
	SentryDSN string
}

// SensitiveKeys are attribute keys whose values never reach a log sink.
var SensitiveKeys = []string{"password", "token", "secret", "api_key", "authorization", "jwt_secret"}

var closers sync.Map

// New creates configured slog.Logger instance.
func New(o Options) *slog.Logger {
	consoleLevel := o.ConsoleLevel
	if consoleLevel == "" {
		consoleLevel = "info"
	}
	fileLevel := o.FileLevel
	if fileLevel == "" {
		fileLevel = "debug"
	}

	var handlers []slog.Handler

	timeFormat := time.RFC3339
	if o.Env == "dev" {
		timeFormat = time.Kitchen
	}
	handlers = append(handlers, tint.NewHandler(os.Stdout, &tint.Options{
		Level:      levelFromString(consoleLevel),
		TimeFormat: timeFormat,
	}))

	var closer func() error

	if o.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		closer = fileWriter.Close
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: levelFromString(fileLevel)}))
	}

	if o.SentryDSN != "" {
		if h, err := newSentryHandler(o); err == nil {
			handlers = append(handlers, h)
			prev := closer
			closer = func() error {
				sentry.Flush(2 * time.Second)
				if prev != nil {
					return prev()
				}
				return nil
			}
		} else {
			slog.New(handlers[0]).Error("sentry init failed, continuing without it", "err", err)
		}
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = NewMultiHandler(handlers...)
	}
	h = NewRedactingHandler(h, SensitiveKeys)
	h = NewContextHandler(h)

	l := slog.New(h).With(
		slog.String("app", o.App),
		slog.String("env", o.Env),
	)

	if closer != nil {
		closers.Store(l, closer)
	}

	return l
}

// newSentryHandler sends errors as Sentry issues and warnings as logs.
func newSentryHandler(o Options) (slog.Handler, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         o.SentryDSN,
		Environment: o.Env,
		Release:     o.App,
		EnableLogs:  true,
	})
	if err != nil {
		return nil, err
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background()), nil
}

// Close flushes Sentry and closes file handlers.
// Should be called when shutting down the application.
func Close(logger *slog.Logger) error {
	if c, ok := closers.Load(logger); ok {
		closers.Delete(logger)
		return c.(func() error)()
	}
	return nil
}

func levelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
