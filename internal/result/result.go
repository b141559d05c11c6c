// Package result provides the success-or-errors value returned by every
// business operation in place of a Go error for expected failures.
//
// A Result is consumed through Match or Switch, which force the caller to
// supply both the success and the error branch:
//
//	status := result.Match(r,
//	    func(u UserDTO) int { return http.StatusOK },
//	    func(errs []result.Error) int { return registry.ResolveStatus(errs[0]) },
//	)
package result

// Result holds either a value or a non-empty ordered list of errors.
// The zero Result is a success carrying the zero value of T.
type Result[T any] struct {
	value T
	errs  []Error
}

// Ok wraps a success value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail builds a failed Result from one or more errors.
func Fail[T any](first Error, rest ...Error) Result[T] {
	errs := make([]Error, 0, 1+len(rest))
	errs = append(errs, first)
	errs = append(errs, rest...)
	return Result[T]{errs: errs}
}

// FromErrors builds a failed Result from an error list. An empty list is
// replaced with a single unexpected error so the Result never carries
// neither a value nor an error.
func FromErrors[T any](errs []Error) Result[T] {
	if len(errs) == 0 {
		return Fail[T](Unexpected("Result.Empty", "An error list was expected but none was provided."))
	}
	cp := make([]Error, len(errs))
	copy(cp, errs)
	return Result[T]{errs: cp}
}

// Switch calls onValue or onErrors depending on the outcome.
func (r Result[T]) Switch(onValue func(T), onErrors func([]Error)) {
	if len(r.errs) > 0 {
		onErrors(r.errs)
		return
	}
	onValue(r.value)
}

// Match consumes r, returning whatever the selected branch returns.
// The error slice passed to onErrors must not be modified.
func Match[T, R any](r Result[T], onValue func(T) R, onErrors func([]Error) R) R {
	if len(r.errs) > 0 {
		return onErrors(r.errs)
	}
	return onValue(r.value)
}

// Map transforms the success value, passing errors through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if len(r.errs) > 0 {
		return Result[U]{errs: r.errs}
	}
	return Ok(f(r.value))
}

// Bind chains an operation that itself returns a Result.
func Bind[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if len(r.errs) > 0 {
		return Result[U]{errs: r.errs}
	}
	return f(r.value)
}

// Unit is the value type of operations that succeed without a payload.
type Unit struct{}

// Done is the success Result of a payload-less operation.
func Done() Result[Unit] {
	return Ok(Unit{})
}
