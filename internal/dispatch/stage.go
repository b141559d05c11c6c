package dispatch

import (
	"context"

	"userapi/internal/result"
)

// Handler processes one request type. Expected failures are reported through
// the Result; the error return is reserved for failures that cannot be
// anticipated, such as an unreachable database.
type Handler[R, T any] interface {
	Handle(ctx context.Context, req R) (result.Result[T], error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[R, T any] func(ctx context.Context, req R) (result.Result[T], error)

// Handle implements Handler.
func (f HandlerFunc[R, T]) Handle(ctx context.Context, req R) (result.Result[T], error) {
	return f(ctx, req)
}

// Stage wraps a HandlerFunc. A stage short-circuits by returning without
// calling next.
type Stage[R, T any] func(next HandlerFunc[R, T]) HandlerFunc[R, T]

// Chain applies stages in order: the first stage is the outermost.
func Chain[R, T any](h HandlerFunc[R, T], stages ...Stage[R, T]) HandlerFunc[R, T] {
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}
	return h
}
