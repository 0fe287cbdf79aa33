package services

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds shared by every service. Match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrAuthorization     = errors.New("authorization error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// ServiceError is a caller-facing failure: a kind, a stable code and a message
// safe to show to the user.
type ServiceError struct {
	Kind    error
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports malformed or missing input
func NewValidationError(code, format string, args ...interface{}) *ServiceError {
	return newError(ErrValidation, code, format, args...)
}

// NewAuthorizationError reports an actor not permitted to act on an entity
func NewAuthorizationError(code, format string, args ...interface{}) *ServiceError {
	return newError(ErrAuthorization, code, format, args...)
}

// NewNotFoundError reports an id that does not resolve
func NewNotFoundError(code, format string, args ...interface{}) *ServiceError {
	return newError(ErrNotFound, code, format, args...)
}

// NewInvalidTransitionError reports a state machine guard failure
func NewInvalidTransitionError(code, format string, args ...interface{}) *ServiceError {
	return newError(ErrInvalidTransition, code, format, args...)
}

// NewUnauthenticatedError reports a missing or unknown actor
func NewUnauthenticatedError(code, format string, args ...interface{}) *ServiceError {
	return newError(ErrUnauthenticated, code, format, args...)
}

// AsServiceError extracts the ServiceError from err, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
