package models

import "fmt"

// Typed errors raised by the engine. The HTTP layer maps them to status
// codes; internal storage error text never reaches the client.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string {
	if e.Message == "" {
		return "access denied"
	}
	return e.Message
}

// ServiceUnavailableError wraps store/cache failures. Callers may retry the
// whole operation; no partial writes are left behind.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return "service temporarily unavailable"
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}
