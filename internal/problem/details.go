// Package problem turns failures into RFC 9457 problem documents.
//
// A Registry, frozen once at startup from a Builder, maps result error kinds
// and escaped Go errors to HTTP statuses. A Translator consults the Registry
// to build Details for either a result error list or an escaped error, so
// every failure response shares one schema.
package problem

import (
	"encoding/json"
	"maps"
	"time"
)

// ContentType is the media type of a serialized problem document.
const ContentType = "application/problem+json"

// Details is the wire-level failure document.
type Details struct {
	Type      string
	Title     string
	Status    int
	Detail    string
	Instance  string
	TraceID   string
	Timestamp time.Time
	// Errors maps camelCase field names to messages. Set only for validation problems.
	Errors map[string][]string
	// Extensions are serialized as additional top-level members.
	Extensions map[string]any
}

// MarshalJSON flattens extensions next to the standard members.
func (d Details) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 8+len(d.Extensions))
	maps.Copy(m, d.Extensions)
	m["type"] = d.Type
	m["title"] = d.Title
	m["status"] = d.Status
	if d.Detail != "" {
		m["detail"] = d.Detail
	}
	m["instance"] = d.Instance
	m["traceId"] = d.TraceID
	m["timestamp"] = d.Timestamp.UTC().Format(time.RFC3339Nano)
	if len(d.Errors) > 0 {
		m["errors"] = d.Errors
	}
	return json.Marshal(m)
}

// Status type URIs as used by ASP.NET-style problem responses.
var typeURIs = map[int]string{
	400: "https://tools.ietf.org/html/rfc7231#section-6.5.1",
	401: "https://tools.ietf.org/html/rfc7235#section-3.1",
	403: "https://tools.ietf.org/html/rfc7231#section-6.5.3",
	404: "https://tools.ietf.org/html/rfc7231#section-6.5.4",
	405: "https://tools.ietf.org/html/rfc7231#section-6.5.5",
	408: "https://tools.ietf.org/html/rfc7231#section-6.5.7",
	409: "https://tools.ietf.org/html/rfc7231#section-6.5.8",
	422: "https://tools.ietf.org/html/rfc4918#section-11.2",
	429: "https://tools.ietf.org/html/rfc6585#section-4",
	500: "https://tools.ietf.org/html/rfc7231#section-6.6.1",
	501: "https://tools.ietf.org/html/rfc7231#section-6.6.2",
	503: "https://tools.ietf.org/html/rfc7231#section-6.6.4",
}

// TypeURI returns the reference URI describing status, or "about:blank".
func TypeURI(status int) string {
	if u, ok := typeURIs[status]; ok {
		return u
	}
	return "about:blank"
}
