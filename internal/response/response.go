package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform JSON wrapper used by every endpoint.
type Envelope struct {
	ResponseCode int                 `json:"response_code"`
	Status       string              `json:"status"`
	Message      string              `json:"message,omitempty"`
	Data         interface{}         `json:"data,omitempty"`
	Errors       map[string][]string `json:"errors,omitempty"`
}

// Success writes a success envelope with the given status code.
func Success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{
		ResponseCode: code,
		Status:       "success",
		Message:      message,
		Data:         data,
	})
}

// Error writes an error envelope with the given status code.
func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{
		ResponseCode: code,
		Status:       "error",
		Message:      message,
	})
}

// ValidationError writes a 422 envelope carrying field-level errors.
func ValidationError(c echo.Context, errs map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, Envelope{
		ResponseCode: http.StatusUnprocessableEntity,
		Status:       "error",
		Errors:       errs,
	})
}

// FieldError is a convenience for a single-field validation failure.
func FieldError(c echo.Context, field, message string) error {
	return ValidationError(c, map[string][]string{field: {message}})
}

// LogAndError logs the underlying error with a context string and answers
// with a generic message so internals never leak to clients.
func LogAndError(c echo.Context, err error, logContext, message string) error {
	c.Logger().Errorf("%s: %v", logContext, err)
	return Error(c, http.StatusInternalServerError, message)
}
