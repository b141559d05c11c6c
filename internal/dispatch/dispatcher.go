// Package dispatch routes typed requests to exactly one handler through an
// ordered stage chain: logging, validation, then the handler itself.
//
// Handlers and validators are registered on a Builder at startup:
//
//	b := dispatch.NewBuilder(dispatch.WithLogger(log))
//	dispatch.Register[users.Create, users.DTO](b, createHandler)
//	dispatch.RegisterValidator[users.Create](b, createValidator)
//	d, err := b.Build(dispatch.Expect[users.Create, users.DTO]())
//
// and invoked per request:
//
//	res, err := dispatch.Send[users.Create, users.DTO](ctx, d, req)
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"userapi/internal/result"
)

var (
	// ErrNoHandler is returned when a request type has no registered handler.
	ErrNoHandler = errors.New("dispatch: no handler registered")
	// ErrDuplicateHandler is returned by Build when a request type has more than one handler.
	ErrDuplicateHandler = errors.New("dispatch: duplicate handler")
	// ErrOrphanValidator is returned by Build when a validator has no matching handler.
	ErrOrphanValidator = errors.New("dispatch: validator without handler")
	// ErrResponseMismatch is returned when a request is sent with a response type its handler does not produce.
	ErrResponseMismatch = errors.New("dispatch: response type mismatch")
)

type route struct {
	resp reflect.Type
	// compose builds the final chain once validators are known.
	compose func(validators []any, log *slog.Logger) any
}

// Builder collects handlers and validators. It is not safe for concurrent use.
type Builder struct {
	log        *slog.Logger
	routes     map[reflect.Type]*route
	validators map[reflect.Type][]any
	errs       []error
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger enables the logging stage.
func WithLogger(log *slog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		routes:     make(map[reflect.Type]*route),
		validators: make(map[reflect.Type][]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register binds h as the only handler for request type R.
func Register[R, T any](b *Builder, h Handler[R, T]) {
	req := reflect.TypeFor[R]()
	if _, exists := b.routes[req]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w for %s", ErrDuplicateHandler, req))
		return
	}
	b.routes[req] = &route{
		resp: reflect.TypeFor[T](),
		compose: func(validators []any, log *slog.Logger) any {
			vs := make([]Validator[R], 0, len(validators))
			for _, v := range validators {
				vs = append(vs, v.(Validator[R]))
			}
			stages := []Stage[R, T]{ValidationStage[R, T](vs...)}
			if log != nil {
				stages = append([]Stage[R, T]{LoggingStage[R, T](log)}, stages...)
			}
			return Chain(HandlerFunc[R, T](h.Handle), stages...)
		},
	}
}

// RegisterValidator adds a validator for request type R. Several validators
// may be registered for one type; their findings are concatenated.
func RegisterValidator[R any](b *Builder, v Validator[R]) {
	req := reflect.TypeFor[R]()
	b.validators[req] = append(b.validators[req], v)
}

// Requirement names a request/response pair that must be routable.
type Requirement struct {
	req  reflect.Type
	resp reflect.Type
}

// Expect declares that request R must be handled and produce T.
func Expect[R, T any]() Requirement {
	return Requirement{req: reflect.TypeFor[R](), resp: reflect.TypeFor[T]()}
}

// Build checks the registrations and returns an immutable Dispatcher.
// It fails on duplicate handlers, validators without a handler and any
// expected request that is missing or produces a different response type.
func (b *Builder) Build(expected ...Requirement) (*Dispatcher, error) {
	errs := append([]error(nil), b.errs...)

	for req := range b.validators {
		if _, ok := b.routes[req]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrOrphanValidator, req))
		}
	}
	for _, e := range expected {
		r, ok := b.routes[e.req]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w for %s", ErrNoHandler, e.req))
		case r.resp != e.resp:
			errs = append(errs, fmt.Errorf("%w: %s produces %s, expected %s", ErrResponseMismatch, e.req, r.resp, e.resp))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	handlers := make(map[reflect.Type]any, len(b.routes))
	for req, r := range b.routes {
		handlers[req] = r.compose(b.validators[req], b.log)
	}
	return &Dispatcher{handlers: handlers}, nil
}

// Dispatcher sends requests to their handler chain. It is safe for concurrent use.
type Dispatcher struct {
	handlers map[reflect.Type]any
}

// Send runs req through the chain registered for R.
func Send[R, T any](ctx context.Context, d *Dispatcher, req R) (result.Result[T], error) {
	rt := reflect.TypeFor[R]()
	h, ok := d.handlers[rt]
	if !ok {
		return result.Result[T]{}, fmt.Errorf("%w for %s", ErrNoHandler, rt)
	}
	fn, ok := h.(HandlerFunc[R, T])
	if !ok {
		return result.Result[T]{}, fmt.Errorf("%w: %s does not produce %s", ErrResponseMismatch, rt, reflect.TypeFor[T]())
	}
	return fn(ctx, req)
}

// LoggingStage logs the outcome and latency of every dispatched request.
func LoggingStage[R, T any](log *slog.Logger) Stage[R, T] {
	name := reflect.TypeFor[R]().String()
	return func(next HandlerFunc[R, T]) HandlerFunc[R, T] {
		return func(ctx context.Context, req R) (result.Result[T], error) {
			start := time.Now()
			res, err := next(ctx, req)
			attrs := []any{slog.String("request", name), slog.Duration("took", time.Since(start))}
			if err != nil {
				log.ErrorContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
				return res, err
			}
			res.Switch(
				func(T) { log.DebugContext(ctx, "request handled", attrs...) },
				func(errs []result.Error) {
					log.InfoContext(ctx, "request rejected",
						append(attrs, slog.Any("first_error", errs[0]), slog.Int("errors", len(errs)))...)
				},
			)
			return res, err
		}
	}
}
