package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the error_code extension of a problem.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is an error a handler has already classified for the client.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render sets the response status for chi/render.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError names one rejected request parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

var (
	ErrNotFound        = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Uploaded file is too large")
	ErrSessionNotFound = New(http.StatusNotFound, CodeSessionNotFound,
		"Session not found or expired; upload the workbook again")
	ErrShuttingDown = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "The server is shutting down")
)

// InvalidRequestWithError reports a request that could not be decoded,
// such as a malformed multipart body.
func InvalidRequestWithError(err error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	e.Details = err.Error()
	return e
}

// ErrValidation rejects a single parameter.
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

func NewValidationErrors(errs []ValidationError) *APIError {
	e := New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	e.Details = ValidationErrors{Errors: errs}
	return e
}
