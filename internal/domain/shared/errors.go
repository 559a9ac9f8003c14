package shared

import (
	"fmt"
	"strings"
)

// Error codes carried by DomainError. The HTTP layer maps them to status codes.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeConflict      = "CONFLICT"
	CodeInvalidState  = "INVALID_STATE"
	CodeInternal      = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches any not-found error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a not-found error naming the entity and its identifier
func NewNotFoundError(entity string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", entity, id))
}

// NewConflictError creates a conflict error with a formatted message
func NewConflictError(format string, args ...any) *DomainError {
	return NewDomainError(CodeConflict, fmt.Sprintf(format, args...))
}

// NewInvalidStateError creates an invalid-state error with a formatted message
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConflict      = NewDomainError(CodeConflict, "Resource is still referenced")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// PartialFailureError reports a bulk operation that succeeded for some
// elements and failed for others. Nothing is rolled back; callers receive
// both sets and decide how to remediate.
type PartialFailureError struct {
	Message   string
	Succeeded []string
	Failures  []string
}

// Error implements the error interface
func (e *PartialFailureError) Error() string {
	if len(e.Failures) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Failures, "; ")
}

// NewPartialFailureError creates a partial failure error
func NewPartialFailureError(message string, succeeded, failures []string) *PartialFailureError {
	if succeeded == nil {
		succeeded = []string{}
	}
	return &PartialFailureError{
		Message:   message,
		Succeeded: succeeded,
		Failures:  failures,
	}
}
