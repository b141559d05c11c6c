// Package dummy is a smoke-test request exercising the full pipeline.
package dummy

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"userapi/internal/dispatch"
	"userapi/internal/result"
	"userapi/internal/validation"
)

type Greet struct {
	Name string `form:"value" validate:"min=5"`
}

var messages = validation.Messages{
	"Name.min": "Name must be at least 5 characters long.",
}

func handle(_ context.Context, req Greet) (result.Result[string], error) {
	return result.Ok(fmt.Sprintf("Hello %s from the greeting handler!", req.Name)), nil
}

func Register(b *dispatch.Builder, v *validator.Validate) {
	dispatch.Register[Greet, string](b, dispatch.HandlerFunc[Greet, string](handle))
	dispatch.RegisterValidator(b, validation.Struct[Greet](v, messages))
}

func Requirements() []dispatch.Requirement {
	return []dispatch.Requirement{dispatch.Expect[Greet, string]()}
}
