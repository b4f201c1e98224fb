// Package httpapi implements the HTTP façade over the orchestration core:
// team creation, execution lifecycle, SSE streaming, and result
// formatting, per spec.md §6. Routing/marshalling is deliberately thin —
// the core packages (teambuilder, engine, formatter, tmpl) own every
// interesting invariant.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/errs"
)

// envelope is the standard response shape every endpoint returns.
type envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, code string, data any) {
	c.JSON(status, envelope{Success: true, Code: code, Message: "", Data: data})
}

func okWithMessage(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, envelope{Success: true, Code: code, Message: message, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, envelope{Success: false, Code: code, Message: message})
}

// errorStatus maps an error's errs.Kind (falling back to KindInternal for
// plain errors) to the HTTP status/code pair spec.md §7 names.
func errorStatus(err error) (int, string) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case errs.KindAlreadyExists:
		return http.StatusConflict, "ALREADY_EXISTS"
	case errs.KindValidation, errs.KindBuildError, errs.KindDependencyError:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errs.KindInvalidState:
		return http.StatusBadRequest, "INVALID_STATE"
	case errs.KindLockFailed, errs.KindBackendUnavailable:
		return http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func failFromError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	fail(c, status, code, err.Error())
}
