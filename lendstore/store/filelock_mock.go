package store

import (
	"context"
	"sync"
	"time"
)

// MockFileLock is an in-process FileLock. Hold simulates another process owning it.
type MockFileLock struct {
	mu      sync.Mutex
	held    bool
	lockErr error

	// Acquired counts successful TryLockContext calls.
	Acquired int
}

// TryLockContext implements FileLock.
func (m *MockFileLock) TryLockContext(context.Context, time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lockErr != nil {
		return false, m.lockErr
	}
	if m.held {
		return false, nil
	}
	m.held = true
	m.Acquired++
	return true, nil
}

// Unlock implements FileLock.
func (m *MockFileLock) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

// IsLocked reports whether anyone holds the lock.
func (m *MockFileLock) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// Hold takes the lock on behalf of someone else until Unlock.
func (m *MockFileLock) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
}

// SetLockError makes every later TryLockContext fail with err; nil clears it.
func (m *MockFileLock) SetLockError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockErr = err
}

// MockFileLockFactory hands out one MockFileLock per path.
type MockFileLockFactory struct {
	mu    sync.Mutex
	locks map[string]*MockFileLock

	// DefaultLockError is installed on every lock the factory creates.
	DefaultLockError error
}

// NewMockFileLockFactory creates an empty factory.
func NewMockFileLockFactory() *MockFileLockFactory {
	return &MockFileLockFactory{locks: make(map[string]*MockFileLock)}
}

// New implements FileLockFactory.
func (f *MockFileLockFactory) New(path string) FileLock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if lock, ok := f.locks[path]; ok {
		return lock
	}
	lock := &MockFileLock{lockErr: f.DefaultLockError}
	f.locks[path] = lock
	return lock
}

// GetLock returns the lock created for path, or nil.
func (f *MockFileLockFactory) GetLock(path string) *MockFileLock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[path]
}
