package store

import (
	"context"
	"errors"
	"fmt"
)

// Common store errors used across the persistence layer. PostgreSQL
// failures are mapped onto these by postgres.MapError so callers can
// assert with errors.Is rather than inspecting driver error codes.
var (
	// ErrConnection is returned when a physical connection cannot be
	// produced: the store is unreachable, authentication fails, or the
	// target database does not exist. It fails the caller's unit of work
	// and no other in-flight work.
	ErrConnection = errors.New("connection failed")

	// ErrConstraintViolation is returned when a statement violates a
	// uniqueness, foreign-key, check, or not-null constraint. The
	// enclosing scope is rolled back; no partial effect remains.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTimeout is returned to a single waiter whose caller-imposed
	// deadline elapsed while blocked, typically on connection acquisition.
	// Pool exhaustion itself is not an error; only the deadline makes it one.
	ErrTimeout = errors.New("timed out waiting for store")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStore is the catch-all for any other statement failure. The
	// current scope is rolled back before it surfaces.
	ErrStore = errors.New("store operation failed")

	// Constraint sub-errors. Both wrap ErrConstraintViolation, so
	// errors.Is(err, ErrConstraintViolation) matches either.

	// ErrDuplicate indicates a unique-constraint violation, e.g. inserting
	// an owner whose username already exists.
	ErrDuplicate = fmt.Errorf("%w: duplicate value", ErrConstraintViolation)

	// ErrInvalidReference indicates a foreign-key violation, e.g. a task
	// whose owner reference does not resolve.
	ErrInvalidReference = fmt.Errorf("%w: invalid reference", ErrConstraintViolation)
)

// IsConstraintViolation checks if the error is any kind of constraint
// violation, including the duplicate and invalid-reference sub-errors.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsTimeout checks if the error is a deadline failure, either the store
// sentinel or a bare context.DeadlineExceeded.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// StoreError carries context about a failed store operation.
type StoreError struct {
	Entity    string // the entity table involved (e.g. "tasks")
	Operation string // the operation that failed (e.g. "seed", "fetch page")
	Err       error  // the underlying error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError wrapping err with entity and
// operation context.
func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}
