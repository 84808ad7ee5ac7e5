package apperror

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is an expected, user-recoverable failure carried to the caller with a
// canonical code and a user-facing message. Infrastructure failures stay as
// plain wrapped errors and are never surfaced this way.
type Error struct {
	code    codes.Code
	message string
}

// New creates an Error with the given canonical code and user-facing message.
func New(code codes.Code, message string) *Error {
	return &Error{code: code, message: message}
}

func (e *Error) Error() string {
	return e.message
}

// GRPCStatus lets google.golang.org/grpc/status recognize the error.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.code, e.message)
}

// Code extracts the canonical code from err, or codes.Internal for anything
// that is not an *Error.
func Code(err error) codes.Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.code
	}
	return codes.Internal
}

// Message returns the user-facing message, or a generic one for internal errors.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.message
	}
	return "internal error"
}

// HTTPStatus maps the error's canonical code to an HTTP status, following the
// Firebase callable-protocol mapping.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
