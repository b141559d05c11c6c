package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc представляет функцию задачи планировщика.
type JobFunc func(ctx context.Context) error

// Job описывает периодическую задачу.
type Job struct {
	Name     string
	Schedule string
	// Timeout ограничивает один запуск; ноль означает без ограничения.
	Timeout time.Duration
	Run     JobFunc
}

// Hooks вызываются после каждого запуска задачи.
type Hooks struct {
	OnFinish func(name string, d time.Duration, err error)
}

// Config содержит конфигурацию планировщика.
type Config struct {
	Logger *slog.Logger
	Hooks  Hooks
}

// Scheduler управляет периодическими задачами.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	hooks  Hooks
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	stopped bool
}

// cronLogger адаптер для интеграции cron logger с slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}

// New создаёт планировщик; задачи получают контекст, производный от parent.
func New(parent context.Context, cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger.With("component", "cron")}
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		hooks:  cfg.Hooks,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add регистрирует задачу. Неверное расписание возвращается как ошибка.
func (s *Scheduler) Add(job Job) (cron.EntryID, error) {
	if job.Run == nil {
		return 0, fmt.Errorf("scheduler: job %q has no func", job.Name)
	}
	if job.Name == "" {
		job.Name = "unnamed"
	}
	id, err := s.cron.AddFunc(job.Schedule, func() { s.run(job) })
	if err != nil {
		return 0, fmt.Errorf("scheduler: add %q: %w", job.Name, err)
	}
	s.logger.Info("job scheduled", "name", job.Name, "schedule", job.Schedule, "id", id)
	return id, nil
}

// Start запускает планировщик. Повторный вызов ничего не делает.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop отменяет контекст задач и ждёт завершения текущих запусков
// не дольше, чем позволяет ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop deadline exceeded")
		return ctx.Err()
	}
}

func (s *Scheduler) run(job Job) {
	ctx := s.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.Error("job panicked", "name", job.Name, "panic", r)
		}
		d := time.Since(start)
		if err != nil {
			s.logger.Error("job failed", "name", job.Name, "error", err, "duration", d)
		} else {
			s.logger.Debug("job completed", "name", job.Name, "duration", d)
		}
		if s.hooks.OnFinish != nil {
			s.hooks.OnFinish(job.Name, d, err)
		}
	}()

	err = job.Run(ctx)
}

// Len возвращает количество зарегистрированных задач.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }
