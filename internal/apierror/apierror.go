// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Error is a service-layer error that carries its HTTP status.
// Handlers resolve it with StatusOf; anything else maps to 500.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func Invalid(msg string) error      { return &Error{Status: http.StatusBadRequest, Detail: msg} }
func Unauthorized(msg string) error { return &Error{Status: http.StatusUnauthorized, Detail: msg} }
func Forbidden(msg string) error    { return &Error{Status: http.StatusForbidden, Detail: msg} }
func NotFound(msg string) error     { return &Error{Status: http.StatusNotFound, Detail: msg} }
func Conflict(msg string) error     { return &Error{Status: http.StatusConflict, Detail: msg} }

// StatusOf returns the HTTP status for err. Unknown error types are
// internal errors: the caller logs them and the client sees a generic 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
