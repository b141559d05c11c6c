// Package app wires configuration, storage, use cases and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authadapter "userapi/internal/adapter/auth"
	"userapi/internal/adapter/httpapi"
	"userapi/internal/adapter/scheduler"
	"userapi/internal/config"
	"userapi/internal/dispatch"
	"userapi/internal/platform/logger"
	"userapi/internal/problem"
	"userapi/internal/usecase/auth"
	"userapi/internal/usecase/dummy"
	"userapi/internal/usecase/errs"
	"userapi/internal/usecase/users"
	"userapi/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// App wires application components.
type App struct {
	cfg   config.Config
	log   *slog.Logger
	store *store
	srv   *http.Server
	sched *scheduler.Scheduler
}

// New loads configuration and builds every component. Startup failures
// (config, migrations, dispatcher wiring) are returned wrapped.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "userapi",
		SentryDSN:    cfg.SentryDSN,
	})

	a, err := build(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		_ = logger.Close(log)
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	d, err := newDispatcher(cfg, st, log)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	reg := problem.NewDefaultBuilder().
		RegisterCustomKindStatus(errs.KindRateLimited, http.StatusTooManyRequests).
		Build()
	tr := problem.NewTranslator(reg, problem.WithDevelopment(cfg.Dev()))

	sched := scheduler.New(ctx, scheduler.Config{Logger: log.With("component", "scheduler")})
	jobs := st.jobs

	var limiter *httpapi.RateLimiter
	if cfg.RateLimit.Permits > 0 {
		limiter = httpapi.NewRateLimiter(cfg.RateLimit.Permits, cfg.RateLimit.Window)
		jobs = append(jobs, scheduler.SweepJob("ratelimit-sweep", "@every 1m", limiter, log))
	}
	for _, j := range jobs {
		if _, err := sched.Add(j); err != nil {
			st.close()
			return nil, err
		}
	}

	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Config{
		Dispatcher:   d,
		Translator:   tr,
		Log:          log,
		Limiter:      limiter,
		Verifier:     jwtIssuer(cfg),
		AuthRequired: cfg.AuthRequired,
		Ready:        st.checks(),

		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	return &App{
		cfg:   cfg,
		log:   log,
		store: st,
		srv: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sched: sched,
	}, nil
}

func jwtIssuer(cfg config.Config) *authadapter.JWTIssuer {
	return authadapter.NewJWTIssuer(authadapter.JWTOptions{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry,
	})
}

func newDispatcher(cfg config.Config, st *store, log *slog.Logger) (*dispatch.Dispatcher, error) {
	v := validation.New()
	b := dispatch.NewBuilder(dispatch.WithLogger(log))

	users.Register(b, users.NewHandlers(st.repo, nil), v)
	auth.RegisterHandlers(b, auth.NewHandlers(st.repo, authadapter.BcryptHasher{}, jwtIssuer(cfg), nil), v)
	dummy.Register(b, v)

	expected := users.Requirements()
	expected = append(expected, auth.Requirements()...)
	expected = append(expected, dummy.Requirements()...)
	return b.Build(expected...)
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting", "addr", a.cfg.HTTP.Addr, "db", a.cfg.DB.Driver, "env", a.cfg.Env)
	a.sched.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		a.log.Error("server", slog.Any("err", serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Info("shutting down")
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown", "err", err)
	}
	if err := a.sched.Stop(shutdownCtx); err != nil {
		a.log.Warn("scheduler shutdown", "err", err)
	}
	return serveErr
}

// Close releases storage and flushes log sinks.
func (a *App) Close() error {
	a.store.close()
	return logger.Close(a.log)
}
