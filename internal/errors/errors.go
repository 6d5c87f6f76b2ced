package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is an error raised at the HTTP edge before the report pipeline runs.
// ErrorHandler turns it into problem+json.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError names the request field that failed
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes carried in the error_code extension
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidPeriod    = "INVALID_PERIOD"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// New creates an APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError carrying details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

var (
	ErrInvalidPeriod = New(http.StatusBadRequest, CodeInvalidPeriod, "Invalid reporting period")
	ErrRateLimited   = New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
)

// InvalidPeriod reports an unusable {year}/{month} pair
func InvalidPeriod(message string, details interface{}) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidPeriod, message, details)
}

// UnsupportedFormat reports a format query value no renderer handles
func UnsupportedFormat(format string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidFormat, "Unsupported report format", format)
}

// ErrValidation creates a validation error for a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}
