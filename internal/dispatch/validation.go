package dispatch

import (
	"context"

	"userapi/internal/result"
)

// Finding is a single validation failure.
type Finding struct {
	Field   string
	Code    string
	Message string
}

// AsError converts the finding into a validation result error.
func (f Finding) AsError() result.Error {
	var opts []result.Option
	if f.Field != "" {
		opts = append(opts, result.WithField(f.Field))
	}
	return result.Validation(f.Code, f.Message, opts...)
}

// Validator checks a request before it reaches its handler.
type Validator[R any] interface {
	Validate(ctx context.Context, req R) []Finding
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[R any] func(ctx context.Context, req R) []Finding

// Validate implements Validator.
func (f ValidatorFunc[R]) Validate(ctx context.Context, req R) []Finding {
	return f(ctx, req)
}

// ValidationStage runs every validator and, when any finding is produced,
// returns a failed Result without calling the handler. With no validators it
// is a pass-through.
func ValidationStage[R, T any](validators ...Validator[R]) Stage[R, T] {
	return func(next HandlerFunc[R, T]) HandlerFunc[R, T] {
		if len(validators) == 0 {
			return next
		}
		return func(ctx context.Context, req R) (result.Result[T], error) {
			var errs []result.Error
			for _, v := range validators {
				for _, f := range v.Validate(ctx, req) {
					errs = append(errs, f.AsError())
				}
			}
			if len(errs) > 0 {
				return result.FromErrors[T](errs), nil
			}
			return next(ctx, req)
		}
	}
}
