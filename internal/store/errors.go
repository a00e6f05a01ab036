package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record exists for an id
	ErrNotFound = errors.New("item not found")

	// ErrInvalidItem is returned when an item cannot be written as given
	ErrInvalidItem = errors.New("invalid item")
)

// StoreError represents a backend failure with the operation context
type StoreError struct {
	Op    string // Operation that failed (get, put, update, delete, scan)
	Table string // Table the operation targeted
	ID    string // Item id, if applicable
	Err   error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s failed for id %s: %v", e.Table, e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Table, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(op, table, id string, err error) *StoreError {
	return &StoreError{
		Op:    op,
		Table: table,
		ID:    id,
		Err:   err,
	}
}

// IsNotFound reports whether err signals a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
