// Package httpapi is the gin transport: routes, middleware and the
// translation of results and escaped errors into problem documents.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"userapi/internal/platform/logger"
	"userapi/internal/problem"
	"userapi/internal/result"
)

// ErrorsKey holds the full []result.Error list of a non-validation
// failure on the gin context.
const ErrorsKey = "errors"

const requestIDKey = "request_id"

func problemRequest(c *gin.Context) problem.Request {
	return problem.Request{Path: c.Request.URL.Path, TraceID: traceID(c)}
}

func traceID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	if id, ok := logger.RequestID(c.Request.Context()); ok {
		return id
	}
	return ""
}

func writeProblem(c *gin.Context, d problem.Details) {
	body, err := json.Marshal(d)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(d.Status, problem.ContentType, body)
	c.Abort()
}

// writeErrors renders a failed result.
func writeErrors(c *gin.Context, tr *problem.Translator, errs []result.Error) {
	d := tr.FromErrors(problemRequest(c), errs)
	if d.Errors == nil {
		c.Set(ErrorsKey, errs)
	}
	writeProblem(c, d)
}

// respond writes res with ok, or its errors as a problem document. A
// non-nil err is left to the exception chain.
func respond[T any](c *gin.Context, tr *problem.Translator, res result.Result[T], err error, ok func(T)) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	res.Switch(ok, func(errs []result.Error) { writeErrors(c, tr, errs) })
}
