package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so callers can branch on the failure
// category instead of on message text.
type ErrorKind int

const (
	// KindUnexpected is a storage failure or any unmapped error
	KindUnexpected ErrorKind = iota
	// KindNotFound means the referenced resource does not exist in the tenant's scope
	KindNotFound
	// KindBusinessRule means a domain rule rejected the operation
	KindBusinessRule
	// KindConflict means a stale version token was presented
	KindConflict
	// KindUnauthorized means the tenant identity is missing or mismatched
	KindUnauthorized
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindBusinessRule:
		return "BUSINESS_RULE"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "UNEXPECTED"
	}
}

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by kind and code, so sentinel values work with errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError creates a new business rule error with the given code
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindBusinessRule,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a NotFound error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBusinessRuleError creates a BusinessRule error with a human-readable title and message
func NewBusinessRuleError(title, message string) *DomainError {
	return &DomainError{
		Kind:    KindBusinessRule,
		Code:    "BUSINESS_RULE",
		Title:   title,
		Message: message,
	}
}

// NewConflictError creates a Conflict error for a stale version token
func NewConflictError(resource string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    "CONCURRENCY_CONFLICT",
		Title:   "Record changed",
		Message: fmt.Sprintf("%s was modified by another user, reload and try again", resource),
	}
}

// NewUnauthorizedError creates an Unauthorized error. The message is fixed so
// the owner of a foreign row is never revealed.
func NewUnauthorizedError() *DomainError {
	return &DomainError{
		Kind:    KindUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: "Not authorized to perform this action",
	}
}

// NewUnexpectedError wraps an unmapped failure. Only the generic message is shown to callers.
func NewUnexpectedError(err error) *DomainError {
	return &DomainError{
		Kind:    KindUnexpected,
		Code:    "UNEXPECTED",
		Message: "An unexpected error occurred",
		Err:     err,
	}
}

// AsDomainError returns err as a DomainError, wrapping unknown errors as Unexpected.
// A nil error yields nil.
func AsDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return NewUnexpectedError(err)
}

// KindOf returns the kind of err, KindUnexpected for non-domain errors
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// IsNotFound reports whether err is a NotFound domain error
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsConflict reports whether err is a Conflict domain error
func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}

// IsBusinessRule reports whether err is a BusinessRule domain error
func IsBusinessRule(err error) bool {
	return err != nil && KindOf(err) == KindBusinessRule
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("Resource")
	ErrConcurrencyConflict = NewConflictError("Resource")
	ErrUnauthorized        = NewUnauthorizedError()
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
)
