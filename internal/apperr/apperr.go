// Package apperr defines the coded errors returned by the portal workflows
// and their mapping onto gRPC codes and HTTP statuses.
package apperr

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeForbidden        Code = "FORBIDDEN"
	CodeConflict         Code = "CONFLICT"
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
)

// GRPCCode maps the code onto the closest gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeNotFound:
		return codes.NotFound
	case CodeForbidden:
		return codes.PermissionDenied
	case CodeConflict:
		return codes.AlreadyExists
	case CodeCapacityExceeded:
		return codes.ResourceExhausted
	case CodeValidation:
		return codes.InvalidArgument
	case CodeUnavailable:
		return codes.Unavailable
	case CodeUnauthenticated:
		return codes.Unauthenticated
	default:
		return codes.Internal
	}
}

func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict, CodeCapacityExceeded:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a workflow error with a machine-readable code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so sentinels like ErrNotFound
// work with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// GRPCStatus lets status.FromError and status.Code understand workflow errors.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code.GRPCCode(), e.Message)
}

var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrCapacityExceeded = &Error{Code: CodeCapacityExceeded, Message: "capacity exceeded"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnavailable      = &Error{Code: CodeUnavailable, Message: "unavailable"}
	ErrUnauthenticated  = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
)

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

func NotFound(msg string) *Error         { return New(CodeNotFound, msg) }
func Forbidden(msg string) *Error        { return New(CodeForbidden, msg) }
func Conflict(msg string) *Error         { return New(CodeConflict, msg) }
func CapacityExceeded(msg string) *Error { return New(CodeCapacityExceeded, msg) }
func Validation(msg string) *Error       { return New(CodeValidation, msg) }

// Unavailable wraps a store failure; it is propagated, never retried.
func Unavailable(cause error) *Error {
	return Wrap(CodeUnavailable, "store unavailable", cause)
}

// CodeOf returns the code carried by err, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message returns the caller-facing message. Causes stay out of it.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// ToStatus converts err into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return status.Error(e.Code.GRPCCode(), e.Message)
	}
	return status.Error(codes.Internal, "internal error")
}
