package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Config задаёт политику повторов.
type Config struct {
	// MaxAttempts включает первую попытку.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter добавляет до 25% случайного разброса к задержке.
	Jitter bool
	// OnRetry вызывается перед ожиданием очередной попытки.
	OnRetry func(attempt int, err error, delay time.Duration)
	// After подменяется в тестах.
	After func(d time.Duration) <-chan time.Time
}

// DefaultConfig возвращает разумные значения для старта зависимостей.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

func (c Config) normalize() (Config, error) {
	if c.MaxAttempts <= 0 {
		return c, errors.New("retry: MaxAttempts must be positive")
	}
	if c.InitialDelay <= 0 {
		return c, errors.New("retry: InitialDelay must be positive")
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2
	}
	if c.After == nil {
		c.After = time.After
	}
	return c, nil
}

// ExhaustedError возвращается, когда попытки закончились.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку как неповторяемую.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent сообщает, была ли ошибка помечена через Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Do вызывает fn до успеха, исчерпания попыток или отмены контекста.
// Ошибка, помеченная Permanent, возвращается сразу без обёртки.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	delay := cfg.InitialDelay
	var last error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
		var p permanentError
		if errors.As(last, &p) {
			return p.err
		}
		if errors.Is(last, context.Canceled) || attempt == cfg.MaxAttempts {
			break
		}

		wait := cfg.withJitter(delay)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, last, wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cfg.After(wait):
		}
		delay = cfg.next(delay)
	}
	if errors.Is(last, context.Canceled) {
		return last
	}
	return &ExhaustedError{Attempts: cfg.MaxAttempts, Last: last}
}

func (c Config) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * c.Multiplier)
	if n > c.MaxDelay || n < d {
		return c.MaxDelay
	}
	return n
}

func (c Config) withJitter(d time.Duration) time.Duration {
	if !c.Jitter || d < 4 {
		return d
	}
	spread := int64(d / 4)
	return d - time.Duration(spread) + time.Duration(rand.Int64N(2*spread+1))
}
