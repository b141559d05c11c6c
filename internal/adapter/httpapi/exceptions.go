package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"userapi/internal/problem"
	"userapi/internal/result"
	"userapi/internal/validation"
)

// ExceptionHandler renders an error that escaped the result channel.
// TryHandle reports whether it wrote the response.
type ExceptionHandler interface {
	TryHandle(c *gin.Context, err error) bool
}

// ExceptionChain tries its handlers in order until one writes.
type ExceptionChain struct {
	handlers []ExceptionHandler
}

func NewExceptionChain(handlers ...ExceptionHandler) *ExceptionChain {
	return &ExceptionChain{handlers: handlers}
}

// Handle returns false when no handler wrote, including when the response
// had already started before the chain ran. Every handler still sees err so
// the one responsible for it can log the refusal.
func (ch *ExceptionChain) Handle(c *gin.Context, err error) bool {
	for _, h := range ch.handlers {
		if h.TryHandle(c, err) {
			return true
		}
	}
	return false
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

// Unwrap exposes a panicked error value to the exception registry.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// Exceptions recovers panics and feeds errors recorded with c.Error into
// the chain once the handlers have run.
func Exceptions(chain *ExceptionChain) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			chain.Handle(c, &PanicError{Value: r, Stack: debug.Stack()})
			c.Abort()
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			chain.Handle(c, last.Err)
		}
	}
}

// ValidationExceptionHandler renders binding failures from
// go-playground/validator as a field-grouped 400.
type ValidationExceptionHandler struct {
	Translator *problem.Translator
	Log        *slog.Logger
}

func (h ValidationExceptionHandler) TryHandle(c *gin.Context, err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	if c.Writer.Written() {
		h.Log.WarnContext(c.Request.Context(), "response already started, skipping validation problem",
			"path", c.Request.URL.Path)
		return false
	}

	findings, _ := validation.Findings(verrs, nil)
	errs := make([]result.Error, len(findings))
	for i, f := range findings {
		errs[i] = f.AsError()
	}
	h.Log.WarnContext(c.Request.Context(), "request binding failed", "fields", len(errs))
	writeProblem(c, h.Translator.FromFields(problemRequest(c), problem.GroupByField(errs)))
	return true
}

// GlobalExceptionHandler renders any error through the exception registry.
type GlobalExceptionHandler struct {
	Translator *problem.Translator
	Log        *slog.Logger
}

func (h GlobalExceptionHandler) TryHandle(c *gin.Context, err error) bool {
	ctx := c.Request.Context()
	attrs := []any{"path", c.Request.URL.Path, "err", err}
	var p *PanicError
	if errors.As(err, &p) {
		attrs = append(attrs, "stack", string(p.Stack))
	}
	if c.Writer.Written() {
		h.Log.WarnContext(ctx, "response already started, cannot write problem", attrs...)
		return false
	}

	d := h.Translator.FromException(problemRequest(c), err)
	attrs = append(attrs, "status", d.Status)
	if d.Status >= http.StatusInternalServerError {
		h.Log.ErrorContext(ctx, "unhandled error", attrs...)
	} else {
		h.Log.WarnContext(ctx, "request failed", attrs...)
	}
	writeProblem(c, d)
	return true
}
