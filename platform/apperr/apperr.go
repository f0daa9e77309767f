// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindUpstream indicates a third-party service could not be reached.
	KindUpstream
	// KindTooManyRequests indicates the caller exceeded a rate limit.
	KindTooManyRequests
)

// Machine-readable error codes returned next to the human message.
const (
	CodeMissingParameter          = "MISSING_PARAMETER"
	CodeInvalidCoordinate         = "INVALID_COORDINATE"
	CodeValidationFailed          = "VALIDATION_FAILED"
	CodeNotFound                  = "NOT_FOUND"
	CodeLocationNotFound          = "LOCATION_NOT_FOUND"
	CodeUpstreamUnavailable       = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamMalformedResponse = "UPSTREAM_MALFORMED_RESPONSE"
	CodeMissingCredential         = "MISSING_CREDENTIAL"
	CodeNoModelAvailable          = "NO_MODEL_AVAILABLE"
	CodeRateLimited               = "RATE_LIMITED"
	CodeInternal                  = "INTERNAL"
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindInternal:
		return http.StatusInternalServerError
	case KindUpstream:
		return http.StatusBadGateway
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation on the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCode sets the machine-readable code on the error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetails sets additional details on the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message).WithCode(CodeNotFound)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message).WithCode(CodeValidationFailed)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message).WithCode(CodeInternal)
}

// MissingParameter creates an error for an absent required request parameter.
func MissingParameter(message string) *Error {
	return BadRequest(message).WithCode(CodeMissingParameter)
}

// InvalidCoordinate creates an error for an unparsable or out-of-range coordinate.
func InvalidCoordinate(message string) *Error {
	return BadRequest(message).WithCode(CodeInvalidCoordinate)
}

// LocationNotFound creates an error for a geocoding lookup without results.
func LocationNotFound(message string) *Error {
	return New(KindNotFound, message).WithCode(CodeLocationNotFound)
}

// UpstreamUnavailable wraps a transport, status or timeout failure of a
// third-party service.
func UpstreamUnavailable(message string, err error) *Error {
	return Wrap(KindUpstream, message, err).WithCode(CodeUpstreamUnavailable)
}

// UpstreamMalformed wraps a third-party response that could not be understood.
func UpstreamMalformed(message string, err error) *Error {
	return Wrap(KindInternal, message, err).WithCode(CodeUpstreamMalformedResponse)
}

// MissingCredential reports server misconfiguration: a required secret is absent.
func MissingCredential(message string) *Error {
	return New(KindInternal, message).WithCode(CodeMissingCredential)
}

// NoModelAvailable reports that the generation provider produced no usable output.
func NoModelAvailable(message string) *Error {
	return New(KindInternal, message).WithCode(CodeNoModelAvailable)
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetCode extracts the error code from an error chain.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
