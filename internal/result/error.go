package result

import (
	"fmt"
	"log/slog"
)

// Kind is the closed category of an expected failure.
type Kind int

const (
	KindFailure Kind = iota
	KindUnexpected
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	// KindCustom marks an error carrying a caller-defined numeric subkind.
	KindCustom
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindFailure:
		return "Failure"
	case KindUnexpected:
		return "Unexpected"
	case KindValidation:
		return "Validation"
	case KindConflict:
		return "Conflict"
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindCustom:
		return "Custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldKey is the metadata key holding the offending request field.
const FieldKey = "field"

// Pair is a single metadata entry.
type Pair struct {
	Key   string
	Value any
}

// Metadata is an ordered list of contextual values attached to an Error.
type Metadata []Pair

// Get returns the first value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Map converts the metadata into a map. Later keys overwrite earlier ones.
func (m Metadata) Map() map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for _, p := range m {
		out[p.Key] = p.Value
	}
	return out
}

// Error is an immutable description of an expected failure.
type Error struct {
	Kind        Kind
	Custom      int // numeric subkind, set only for KindCustom
	Code        string
	Description string
	Metadata    Metadata
}

// Option customizes an Error during construction.
type Option func(*Error)

// WithMetadata appends a key/value pair to the error metadata.
func WithMetadata(key string, value any) Option {
	return func(e *Error) {
		e.Metadata = append(e.Metadata, Pair{Key: key, Value: value})
	}
}

// WithField tags the error with the request field it refers to.
func WithField(name string) Option {
	return WithMetadata(FieldKey, name)
}

func newError(kind Kind, custom int, code, description string, opts []Option) Error {
	if code == "" {
		code = "General." + kind.String()
	}
	if description == "" {
		description = defaultDescription(kind)
	}
	e := Error{Kind: kind, Custom: custom, Code: code, Description: description}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func defaultDescription(k Kind) string {
	switch k {
	case KindValidation:
		return "A validation error has occurred."
	case KindConflict:
		return "A conflict error has occurred."
	case KindNotFound:
		return "A 'Not Found' error has occurred."
	case KindUnauthorized:
		return "An 'Unauthorized' error has occurred."
	case KindForbidden:
		return "A 'Forbidden' error has occurred."
	case KindUnexpected:
		return "An unexpected error has occurred."
	default:
		return "A failure has occurred."
	}
}

func Failure(code, description string, opts ...Option) Error {
	return newError(KindFailure, 0, code, description, opts)
}

func Unexpected(code, description string, opts ...Option) Error {
	return newError(KindUnexpected, 0, code, description, opts)
}

func Validation(code, description string, opts ...Option) Error {
	return newError(KindValidation, 0, code, description, opts)
}

func Conflict(code, description string, opts ...Option) Error {
	return newError(KindConflict, 0, code, description, opts)
}

func NotFound(code, description string, opts ...Option) Error {
	return newError(KindNotFound, 0, code, description, opts)
}

func Unauthorized(code, description string, opts ...Option) Error {
	return newError(KindUnauthorized, 0, code, description, opts)
}

func Forbidden(code, description string, opts ...Option) Error {
	return newError(KindForbidden, 0, code, description, opts)
}

// Custom creates an error with a caller-defined numeric subkind.
func Custom(subkind int, code, description string, opts ...Option) Error {
	return newError(KindCustom, subkind, code, description, opts)
}

// Field returns the request field the error refers to, if any.
func (e Error) Field() (string, bool) {
	v, ok := e.Metadata.Get(FieldKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// String implements fmt.Stringer.
func (e Error) String() string {
	return e.Code + ": " + e.Description
}

// LogValue implements slog.LogValuer.
func (e Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("code", e.Code),
		slog.String("description", e.Description),
	}
	if e.Kind == KindCustom {
		attrs = append(attrs, slog.Int("subkind", e.Custom))
	}
	return slog.GroupValue(attrs...)
}
