// Package validation adapts go-playground/validator struct tags to the
// dispatch validation stage.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"userapi/internal/dispatch"
)

// New returns a validator that reports wire field names, taken from the
// json, form or uri tag, and knows the "past" tag for time values.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	_ = v.RegisterValidation("past", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero() && t.Before(time.Now())
	})
	return v
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Messages overrides default messages. Keys are "<GoField>.<tag>", e.g.
// "PageSize.lte".
type Messages map[string]string

type structValidator[R any] struct {
	v    *validator.Validate
	msgs Messages
}

// Struct validates R through its validate tags.
func Struct[R any](v *validator.Validate, msgs Messages) dispatch.Validator[R] {
	return structValidator[R]{v: v, msgs: msgs}
}

func (s structValidator[R]) Validate(ctx context.Context, req R) []dispatch.Finding {
	err := s.v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	if findings, ok := Findings(err, s.msgs); ok {
		return findings
	}
	return []dispatch.Finding{{Code: "Validation.Invalid", Message: err.Error()}}
}

// Findings converts validator.ValidationErrors into findings. It reports
// false for any other error.
func Findings(err error, msgs Messages) ([]dispatch.Finding, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make([]dispatch.Finding, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dispatch.Finding{
			Field:   fieldPath(fe),
			Code:    "Validation." + fe.Tag(),
			Message: Message(fe, msgs),
		})
	}
	return out, true
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// Message returns the override for fe from msgs or a default text.
func Message(fe validator.FieldError, msgs Messages) string {
	if m, ok := msgs[fe.StructField()+"."+fe.Tag()]; ok {
		return m
	}
	name, p := fe.StructField(), fe.Param()
	str := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return name + " is required."
	case "email":
		return name + " must be a valid email address."
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", name, p)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s.", name, p)
	case "lt":
		return fmt.Sprintf("%s must be less than %s.", name, p)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s.", name, p)
	case "min":
		if str {
			return fmt.Sprintf("%s must be at least %s characters long.", name, p)
		}
		return fmt.Sprintf("%s must be at least %s.", name, p)
	case "max":
		if str {
			return fmt.Sprintf("%s must not exceed %s characters.", name, p)
		}
		return fmt.Sprintf("%s must not exceed %s.", name, p)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, strings.ReplaceAll(p, " ", ", "))
	case "past":
		return name + " must be in the past."
	default:
		return name + " is invalid."
	}
}
