package problem

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"

	"userapi/internal/result"
)

// ExceptionResponse is the status and metadata rendered for an escaped error.
type ExceptionResponse struct {
	Status int
	Title  string
	Type   string
}

// DefaultExceptionResponse is used when no exception rule matches.
var DefaultExceptionResponse = ExceptionResponse{
	Status: http.StatusInternalServerError,
	Title:  "Internal Server Error",
	Type:   "https://tools.ietf.org/html/rfc7231#section-6.6.1",
}

// Matcher selects escaped errors for an exception rule. Rules with the same
// key replace each other.
type Matcher struct {
	key   string
	exact func(error) bool
	match func(error) bool
}

// Is matches errors whose chain contains target. An error that is target
// itself is an exact match.
func Is(target error) Matcher {
	canCompare := target != nil && reflect.TypeOf(target).Comparable()
	return Matcher{
		key:   fmt.Sprintf("is:%T@%p", target, target),
		exact: func(err error) bool { return canCompare && err == target },
		match: func(err error) bool { return errors.Is(err, target) },
	}
}

// As matches errors whose chain contains an E. An error whose dynamic type is
// E is an exact match.
func As[E error]() Matcher {
	typ := reflect.TypeFor[E]()
	return Matcher{
		key: "as:" + typ.String(),
		exact: func(err error) bool {
			return err != nil && reflect.TypeOf(err) == typ
		},
		match: func(err error) bool {
			var target E
			return errors.As(err, &target)
		},
	}
}

// When matches errors accepted by f. It never produces an exact match.
func When(key string, f func(error) bool) Matcher {
	return Matcher{key: "when:" + key, match: f}
}

type exceptionRule struct {
	matcher  Matcher
	response ExceptionResponse
}

// Builder collects status mappings during startup. It is not safe for
// concurrent use; call Build to obtain the immutable Registry.
type Builder struct {
	kinds      map[result.Kind]int
	custom     map[int]int
	exceptions []exceptionRule
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		kinds:  make(map[result.Kind]int),
		custom: make(map[int]int),
	}
}

// RegisterErrorKindStatus maps a result error kind to status. Last write wins.
func (b *Builder) RegisterErrorKindStatus(kind result.Kind, status int) *Builder {
	b.kinds[kind] = status
	return b
}

// RegisterCustomKindStatus maps a custom numeric subkind to status. Last write wins.
func (b *Builder) RegisterCustomKindStatus(subkind, status int) *Builder {
	b.custom[subkind] = status
	return b
}

// RegisterExceptionMapping appends an exception rule. Re-registering a
// matcher key overwrites the rule in its original position.
func (b *Builder) RegisterExceptionMapping(m Matcher, status int, title, typeURI string) *Builder {
	if typeURI == "" {
		typeURI = TypeURI(status)
	}
	rule := exceptionRule{matcher: m, response: ExceptionResponse{Status: status, Title: title, Type: typeURI}}
	for i := range b.exceptions {
		if b.exceptions[i].matcher.key == m.key {
			b.exceptions[i] = rule
			return b
		}
	}
	b.exceptions = append(b.exceptions, rule)
	return b
}

// Build freezes the current mappings. Later builder changes do not affect
// the returned Registry.
func (b *Builder) Build() *Registry {
	return &Registry{
		kinds:      maps.Clone(b.kinds),
		custom:     maps.Clone(b.custom),
		exceptions: slices.Clone(b.exceptions),
	}
}

// Registry is an immutable status lookup shared by all requests.
type Registry struct {
	kinds      map[result.Kind]int
	custom     map[int]int
	exceptions []exceptionRule
}

// ResolveStatus returns the status for e: the custom subkind table first,
// then the kind table, else 500.
func (r *Registry) ResolveStatus(e result.Error) int {
	if e.Kind == result.KindCustom {
		if s, ok := r.custom[e.Custom]; ok {
			return s
		}
	}
	if s, ok := r.kinds[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ResolveException returns the response for an escaped error. Exact matches
// win over chain matches; otherwise the first rule in registration order
// that matches is used.
func (r *Registry) ResolveException(err error) ExceptionResponse {
	for _, rule := range r.exceptions {
		if rule.matcher.exact != nil && rule.matcher.exact(err) {
			return rule.response
		}
	}
	for _, rule := range r.exceptions {
		if rule.matcher.match(err) {
			return rule.response
		}
	}
	return DefaultExceptionResponse
}
