// Package apperror defines the error kinds shared across the lab.
//
// Handlers and the store return *AppError values wrapping one of the sentinel
// kinds below. The HTTP layer maps kinds to status codes; the verbose error
// formatter additionally leaks Details, Query and Stack — that leakage is one of
// the documented weaknesses (API8), so AppError deliberately carries more than a
// production error type would.
package apperror

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	ErrAuthMissing     = errors.New("authentication required")
	ErrAuthInvalid     = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrStorageFailure  = errors.New("storage failure")
	ErrUpstreamFailure = errors.New("upstream failure")
)

// AppError is the concrete error passed up to the error surface.
type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message
	Status  int    // HTTP status; the verbose formatter uses Status or 500
	Details string // extra context (leaked verbatim by the verbose formatter)
	Query   string // offending SQL text, when the store produced the error
	Stack   string // call stack captured at construction time
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind error, status int, message string) *AppError {
	return &AppError{
		Err:     kind,
		Message: message,
		Status:  status,
		Stack:   string(debug.Stack()),
	}
}

// AuthMissing maps to 401: no usable credentials on the request.
func AuthMissing(message string) *AppError {
	return newError(ErrAuthMissing, 401, message)
}

// AuthInvalid maps to 403: credentials were present but unusable.
func AuthInvalid(message string) *AppError {
	return newError(ErrAuthInvalid, 403, message)
}

func Forbidden(message string) *AppError {
	return newError(ErrForbidden, 403, message)
}

func NotFound(message string) *AppError {
	return newError(ErrNotFound, 404, message)
}

func BadRequest(message string) *AppError {
	return newError(ErrBadRequest, 400, message)
}

// Storage wraps a database error together with the SQL text that caused it.
// The query ends up in the verbose error body, leaking schema details — by
// the lab's design.
func Storage(err error, query string) *AppError {
	e := newError(ErrStorageFailure, 500, err.Error())
	e.Details = fmt.Sprintf("database error: %v", err)
	e.Query = query
	return e
}

// Upstream wraps a failed outbound request (the avatar fetch). The raw error
// text — which can reveal internal network layout — goes into Details.
func Upstream(message string, err error) *AppError {
	e := newError(ErrUpstreamFailure, 500, message)
	e.Details = err.Error()
	return e
}
