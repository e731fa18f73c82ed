// Package errors provides custom error types for the worklog API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// HasCode reports whether err is an *AppError carrying the sentinel's code.
func HasCode(err error, sentinel *AppError) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == sentinel.Code
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Directory errors.
var (
	ErrEmployeeNotFound = &AppError{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found", StatusCode: http.StatusNotFound}
	ErrProjectNotFound  = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
)

// Daily log errors.
var (
	ErrLogNotFound = &AppError{Code: "LOG_NOT_FOUND", Message: "Daily log not found", StatusCode: http.StatusNotFound}
	ErrLockedEntry = &AppError{Code: "LOCKED_ENTRY", Message: "Cannot modify locked logs. Already submitted in a report", StatusCode: http.StatusBadRequest}
)

// Report errors.
var (
	ErrReportNotFound         = &AppError{Code: "REPORT_NOT_FOUND", Message: "Report not found", StatusCode: http.StatusNotFound}
	ErrDuplicateReport        = &AppError{Code: "DUPLICATE_REPORT", Message: "A report already exists for this employee and period", StatusCode: http.StatusBadRequest}
	ErrSubmissionWindowClosed = &AppError{Code: "SUBMISSION_WINDOW_CLOSED", Message: "Reports can only be submitted Monday through Friday", StatusCode: http.StatusBadRequest}
	ErrInvalidReportType      = &AppError{Code: "INVALID_REPORT_TYPE", Message: "Report type is not allowed for this employee", StatusCode: http.StatusBadRequest}
)
