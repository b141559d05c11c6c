package problem

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"userapi/internal/result"
)

const (
	ValidationTitle  = "One or more validation errors occurred."
	ValidationType   = "https://tools.ietf.org/html/rfc7231#section-6.5.1"
	ValidationDetail = "The request contains invalid data. Please check the errors and try again."

	// GenericDetail replaces internal error messages outside development.
	GenericDetail = "An error occurred processing your request."

	emptyTitle = "An error occurred while processing your request."
)

// Request identifies the request a problem document describes.
type Request struct {
	Path    string
	TraceID string
}

// Translator builds problem documents. It is safe for concurrent use.
type Translator struct {
	registry *Registry
	dev      bool
	now      func() time.Time
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithDevelopment exposes escaped error messages in the detail member.
func WithDevelopment(dev bool) TranslatorOption {
	return func(t *Translator) { t.dev = dev }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) TranslatorOption {
	return func(t *Translator) { t.now = now }
}

// NewTranslator creates a Translator backed by reg.
func NewTranslator(reg *Registry, opts ...TranslatorOption) *Translator {
	t := &Translator{registry: reg, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry returns the registry the translator resolves statuses with.
func (t *Translator) Registry() *Registry {
	return t.registry
}

// FromErrors translates a result error list.
//
// An empty list yields a generic 500. A list made only of validation errors
// yields a 400 grouped by field. Otherwise the first error decides the status
// and its description becomes the title.
func (t *Translator) FromErrors(req Request, errs []result.Error) Details {
	if len(errs) == 0 {
		return t.base(req, http.StatusInternalServerError, emptyTitle, TypeURI(http.StatusInternalServerError))
	}

	if allValidation(errs) {
		return t.FromFields(req, GroupByField(errs))
	}

	first := errs[0]
	status := t.registry.ResolveStatus(first)
	d := t.base(req, status, first.Description, TypeURI(status))
	d.Extensions = map[string]any{"code": first.Code}
	return d
}

// FromFields builds a 400 validation problem from field-grouped messages.
func (t *Translator) FromFields(req Request, fields map[string][]string) Details {
	d := t.base(req, http.StatusBadRequest, ValidationTitle, ValidationType)
	d.Detail = ValidationDetail
	d.Errors = fields
	return d
}

// FromException translates an error that escaped the result channel.
func (t *Translator) FromException(req Request, err error) Details {
	resp := t.registry.ResolveException(err)
	d := t.base(req, resp.Status, resp.Title, resp.Type)
	d.Detail = GenericDetail
	if t.dev && err != nil {
		d.Detail = err.Error()
	}
	return d
}

// FromStatus builds a bare problem for status, titled with its reason phrase.
func (t *Translator) FromStatus(req Request, status int, detail string) Details {
	d := t.base(req, status, http.StatusText(status), TypeURI(status))
	d.Detail = detail
	return d
}

func (t *Translator) base(req Request, status int, title, typeURI string) Details {
	return Details{
		Type:      typeURI,
		Title:     title,
		Status:    status,
		Instance:  req.Path,
		TraceID:   req.TraceID,
		Timestamp: t.now().UTC(),
	}
}

func allValidation(errs []result.Error) bool {
	for _, e := range errs {
		if e.Kind != result.KindValidation {
			return false
		}
	}
	return true
}

// GroupByField groups error descriptions by their camelCased field, falling
// back to the error code when no field is attached. Message order follows
// the input order.
func GroupByField(errs []result.Error) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, e := range errs {
		key := e.Code
		if f, ok := e.Field(); ok {
			key = CamelCase(f)
		}
		out[key] = append(out[key], e.Description)
	}
	return out
}

// CamelCase lowers the leading upper-case run of every dot-separated
// segment: "Email" -> "email", "UserID" -> "userID", "Address.ZIP" -> "address.zip".
func CamelCase(name string) string {
	if name == "" {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = camelSegment(p)
	}
	return strings.Join(parts, ".")
}

func camelSegment(s string) string {
	r := []rune(s)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return s
	}
	for i := range r {
		if i == 1 && !unicode.IsUpper(r[i]) {
			break
		}
		if i > 0 && i+1 < len(r) && !unicode.IsUpper(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}
