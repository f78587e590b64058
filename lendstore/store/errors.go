package store

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence is matched by every error Save returns.
	ErrPersistence = errors.New("persistence failure")

	// ErrCorruptSnapshot means the snapshot file exists but cannot be used.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// PersistenceError records which step of a load or save failed.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap makes the error match both ErrPersistence and its cause.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
