// Package apperr defines the typed business errors returned by services.
// Handlers translate them into HTTP status codes; nothing else should leak.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func NewFieldValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError is returned when a request asks for more units than
// are available (quantity - reserved) on an inventory record.
type InsufficientStockError struct {
	ProductID uuid.UUID
	ShopID    uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

func NewInsufficientStock(requested, available int) *InsufficientStockError {
	return &InsufficientStockError{Requested: requested, Available: available}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return e.Resource + " not found"
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// DuplicateKeyError reports a unique constraint violation.
type DuplicateKeyError struct {
	Resource string
	Message  string
}

func (e *DuplicateKeyError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Resource + " already exists"
}

func NewDuplicateKey(resource, message string) *DuplicateKeyError {
	return &DuplicateKeyError{Resource: resource, Message: message}
}

// UnauthorizedError is returned when a mutating call has no authenticated actor.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

func NewUnauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// StorageError wraps a transaction or connection failure. It is the only
// error kind that represents an unexpected condition.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage failure (%s): %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage failure (%s)", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage wraps err as a StorageError unless it is nil or already one of the
// typed business errors of this package.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTyped(err) {
		return err
	}
	return &StorageError{Op: op, Cause: err}
}

// IsTyped reports whether err is (or wraps) one of the errors of this package.
func IsTyped(err error) bool {
	var (
		ve *ValidationError
		ie *InsufficientStockError
		ne *NotFoundError
		de *DuplicateKeyError
		ue *UnauthorizedError
		se *StorageError
	)
	return errors.As(err, &ve) || errors.As(err, &ie) || errors.As(err, &ne) ||
		errors.As(err, &de) || errors.As(err, &ue) || errors.As(err, &se)
}
