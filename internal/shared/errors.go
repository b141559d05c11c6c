package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotFound indicates that a looked-up key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates an invalid argument reached a component.
	ErrValidation = errors.New("invalid argument")

	// ErrUnauthorized indicates the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates the operation is invalid for the current state.
	ErrConflict = errors.New("conflict")

	// ErrNotImplemented indicates a code path that is not implemented.
	ErrNotImplemented = errors.New("not implemented")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrUnavailable indicates that a dependency (database, cache) failed.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrInternal indicates an internal defect.
	ErrInternal = errors.New("internal error")
)

// Kind represents a category of escaped error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotImplemented
	KindTimeout
	KindUnavailable
	KindInternal
	KindCanceled
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	case KindNotImplemented:
		return "NotImplemented"
	case KindTimeout:
		return "Timeout"
	case KindUnavailable:
		return "Unavailable"
	case KindInternal:
		return "Internal"
	case KindCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// kindPriorities defines the deterministic order used by KindOf.
var kindPriorities = []struct {
	kind Kind
	err  error
}{
	{KindCanceled, nil},
	{KindTimeout, ErrTimeout},
	{KindNotFound, ErrNotFound},
	{KindValidation, ErrValidation},
	{KindUnauthorized, ErrUnauthorized},
	{KindForbidden, ErrForbidden},
	{KindConflict, ErrConflict},
	{KindNotImplemented, ErrNotImplemented},
	{KindUnavailable, ErrUnavailable},
	{KindInternal, ErrInternal},
}

// KindOf classifies err by walking its chain against the priority table.
// Returns KindUnknown for nil and unrecognized errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, p := range kindPriorities {
		switch p.kind {
		case KindCanceled:
			if IsCanceled(err) {
				return KindCanceled
			}
		case KindTimeout:
			if IsTimeout(err) {
				return KindTimeout
			}
		default:
			if errors.Is(err, p.err) {
				return p.kind
			}
		}
	}
	return KindUnknown
}

// SentinelOf returns the sentinel for kind, or nil for KindUnknown and KindCanceled.
func SentinelOf(kind Kind) error {
	for _, p := range kindPriorities {
		if p.kind == kind {
			return p.err
		}
	}
	return nil
}

// MarkKind wraps err with the sentinel of kind while keeping err in the chain.
// Marking an error with the kind it already has returns it unchanged.
func MarkKind(err error, kind Kind) error {
	sentinel := SentinelOf(kind)
	if err == nil {
		return sentinel
	}
	if sentinel == nil || KindOf(err) == kind {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wrap adds context to err. Returns nil when err is nil.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	if context == "" {
		return err
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf is Wrap with a formatted context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsCanceled reports whether err stems from a canceled context.
func IsCanceled(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// IsTimeout reports whether err is a deadline, a net timeout or ErrTimeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool     { return errors.Is(err, ErrValidation) }
func IsUnauthorized(err error) bool   { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool      { return errors.Is(err, ErrForbidden) }
func IsConflict(err error) bool       { return errors.Is(err, ErrConflict) }
func IsNotImplemented(err error) bool { return errors.Is(err, ErrNotImplemented) }
func IsUnavailable(err error) bool    { return errors.Is(err, ErrUnavailable) }
