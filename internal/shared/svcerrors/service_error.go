package svcerrors

import (
	"errors"
	"fmt"
)

const (
	categoryInvalidArgument   = "invalid_argument"
	categoryUnauthenticated   = "unauthenticated"
	categoryPayloadTooLarge   = "payload_too_large"
	categoryResourceExhausted = "resource_exhausted"
	categoryUnavailable       = "unavailable"
	categoryInternal          = "internal"
)

const (
	errorCodeInternalPanic     = "SYS_9000"
	errorCodeInternalUndefined = "SYS_9001"
)

// NewInvalidArgumentError creates a new ServiceError with category invalid_argument.
func NewInvalidArgumentError(code, message string, cause error) *ServiceError {
	return &ServiceError{
		Category:       categoryInvalidArgument,
		Code:           code,
		Message:        message,
		Cause:          cause,
		HttpStatusCode: 400,
	}
}

// NewUnauthenticatedError creates a new ServiceError with category unauthenticated.
func NewUnauthenticatedError(code, message string, cause error) *ServiceError {
	return &ServiceError{
		Category:       categoryUnauthenticated,
		Code:           code,
		Message:        message,
		Cause:          cause,
		HttpStatusCode: 401,
	}
}

// NewPayloadTooLargeError creates a new ServiceError with category payload_too_large.
func NewPayloadTooLargeError(code, message string, cause error) *ServiceError {
	return &ServiceError{
		Category:       categoryPayloadTooLarge,
		Code:           code,
		Message:        message,
		Cause:          cause,
		HttpStatusCode: 413,
	}
}

// NewResourceExhaustedError creates a new ServiceError with category resource_exhausted.
// retryAfterSeconds is surfaced to the client via the Retry-After header.
func NewResourceExhaustedError(code, message string, retryAfterSeconds int) *ServiceError {
	return &ServiceError{
		Category:          categoryResourceExhausted,
		Code:              code,
		Message:           message,
		HttpStatusCode:    429,
		RetryAfterSeconds: retryAfterSeconds,
	}
}

// NewUnavailableError creates a new ServiceError with category unavailable.
// retryAfterSeconds is surfaced to the client via the Retry-After header.
func NewUnavailableError(code, message string, retryAfterSeconds int) *ServiceError {
	return &ServiceError{
		Category:          categoryUnavailable,
		Code:              code,
		Message:           message,
		HttpStatusCode:    503,
		RetryAfterSeconds: retryAfterSeconds,
	}
}

// NewInternalError creates a new ServiceError with category internal.
func NewInternalError(code string, cause error) *ServiceError {
	return &ServiceError{
		Category:       categoryInternal,
		Code:           code,
		Message:        "internal server error",
		Cause:          cause,
		HttpStatusCode: 500,
	}
}

// NewInternalErrorUndefined creates a new ServiceError with category internal and code SYS_9001.
func NewInternalErrorUndefined(cause error) *ServiceError {
	return NewInternalError(errorCodeInternalUndefined, cause)
}

func NewInternalErrorPanic(cause error) *ServiceError {
	return NewInternalError(errorCodeInternalPanic, cause)
}

func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// ServiceError represents a service-level error with category, code, message, and cause.
// It implements the error interface and supports error wrapping.
type ServiceError struct {
	Category          string // invalid_argument, unauthenticated, ...
	Code              string // service-owned stable code (e.g. AUTH_1002)
	Message           string // client-safe, human-readable
	Cause             error  // wrapped underlying error
	HttpStatusCode    int    // HTTP status code
	RetryAfterSeconds int    // 0 means no Retry-After header
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error to support errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) IsInternalError() bool {
	return e.Category == categoryInternal
}
