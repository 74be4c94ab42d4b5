package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// envelope is the JSend body every /api route answers with. The request id is
// echoed so log lines and client reports can be matched.
type envelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respond(c echo.Context, code int, body envelope) error {
	body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	return c.JSON(code, body)
}

func success(c echo.Context, data any) error {
	return respond(c, http.StatusOK, envelope{Status: statusSuccess, Data: data})
}

func fail(c echo.Context, code int, message string) error {
	return respond(c, code, envelope{Status: statusFail, Message: message})
}

// failValidation reports per-field problems keyed by JSON pointer.
func failValidation(c echo.Context, fields map[string]string) error {
	return respond(c, http.StatusBadRequest, envelope{
		Status:  statusFail,
		Message: "Validation failed",
		Data:    map[string]any{"validation_errors": fields},
	})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message)
}

func internalError(c echo.Context, message string) error {
	return respond(c, http.StatusInternalServerError, envelope{
		Status:  statusError,
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}
