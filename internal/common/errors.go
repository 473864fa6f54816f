package common

import (
	"errors"
	"net/http"
)

// Canonical error codes returned by the API. Upstream gateway detail is
// logged server-side only; client-facing messages stay generic.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeAuthFailed       = "AUTH_FAILED"
	CodeOrderCreate      = "ORDER_CREATE_FAILED"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ValidationError reports bad customer input with per-field details.
func ValidationError(details any) *AppError {
	return &AppError{Code: CodeValidation, Message: "invalid input", HTTPStatus: http.StatusBadRequest, Details: details}
}

// AuthenticationError wraps a failed gateway credential exchange. The
// wrapped error carries upstream detail for logs; the message shown to
// clients stays generic.
func AuthenticationError(err error) *AppError {
	return &AppError{Code: CodeAuthFailed, Message: "payment authentication failed", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// OrderCreationError wraps a gateway order rejection or an unusable
// order response.
func OrderCreationError(err error) *AppError {
	return &AppError{Code: CodeOrderCreate, Message: "payment order creation failed", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// AsAppError extracts an AppError from err, converting unknown errors
// into a generic internal error so raw detail never leaks to clients.
func AsAppError(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return &AppError{Code: CodeInternal, Message: "internal error", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
