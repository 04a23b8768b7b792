// Package apierrors defines the coded errors surfaced at the API boundary.
//
// Every failure the hub reports to a caller carries a stable machine-readable
// code; handlers translate codes to HTTP statuses in one place so endpoints
// stay consistent.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error code.
type Code string

const (
	CodeBadRequest        Code = "bad_request"
	CodeUnauthorized      Code = "unauthorized"
	CodeInsufficientScope Code = "insufficient_permissions"
	CodeSourceMismatch    Code = "source_mismatch"
	CodeValidation        Code = "validation_failed"
	CodeNotFound          Code = "not_found"
	CodeRateLimited       Code = "rate_limit_exceeded"
	CodeInternal          Code = "internal_error"
)

// Error is a coded API error. Validation errors additionally carry a
// field -> messages map rendered in the 422 response body.
type Error struct {
	Code    Code
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidation creates a validation error with field-level detail.
func NewValidation(fields map[string][]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "The given data was invalid.",
		Fields:  fields,
	}
}

// Is reports whether err is a coded error with the given code.
func Is(err error, code Code) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// From extracts the coded error from err, or nil if err is not one.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInsufficientScope, CodeSourceMismatch:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
