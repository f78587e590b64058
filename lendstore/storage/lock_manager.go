package storage

import (
	"sync"
)

// OperationType defines whether an operation is read or write.
type OperationType int

const (
	// ReadOperation indicates an operation that only reads data.
	// Multiple read operations can proceed concurrently.
	ReadOperation OperationType = iota

	// WriteOperation indicates an operation that modifies data.
	// Write operations are exclusive - no other reads or writes
	// can proceed while a write lock is held.
	WriteOperation
)

func (t OperationType) String() string {
	if t == WriteOperation {
		return "write"
	}
	return "read"
}

// LockManager centralizes the reader/writer discipline of a library. Every public library
// operation goes through Execute so that validation and the mutation it gates happen under
// one lock acquisition.
//
// The lock is not reentrant: fn must not call back into anything that takes the same lock.
type LockManager struct {
	mu *sync.RWMutex
}

// NewLockManager creates a new lock manager instance.
func NewLockManager() *LockManager {
	return &LockManager{
		mu: &sync.RWMutex{},
	}
}

// Execute runs fn holding the read lock for ReadOperation or the write lock for
// WriteOperation. The lock is released via defer, so it is released even if fn panics.
//
// Example:
//
//	err := lockManager.Execute(ReadOperation, func() error {
//	    // Safe to read data here
//	    return nil
//	})
func (lm *LockManager) Execute(opType OperationType, fn func() error) error {
	switch opType {
	case ReadOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case WriteOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}

// ExecuteWithResult is Execute for functions that also produce a value.
//
//	book, err := storage.ExecuteWithResult(lm, storage.WriteOperation, func() (types.Book, error) {
//	    return lib.createLocked(title, author, quantity)
//	})
func ExecuteWithResult[T any](lm *LockManager, opType OperationType, fn func() (T, error)) (T, error) {
	var result T
	err := lm.Execute(opType, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}
