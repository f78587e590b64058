package store

import (
	"log/slog"
	"time"
)

// Option configures a SnapshotFile
type Option func(*SnapshotFile)

// WithFileSystem sets a custom FileSystem implementation
func WithFileSystem(fs FileSystem) Option {
	return func(s *SnapshotFile) {
		s.fs = fs
	}
}

// WithFileLockFactory sets a custom FileLockFactory implementation
func WithFileLockFactory(factory FileLockFactory) Option {
	return func(s *SnapshotFile) {
		s.lockFactory = factory
	}
}

// WithTimeFunc sets a custom time function for testing
func WithTimeFunc(fn func() time.Time) Option {
	return func(s *SnapshotFile) {
		s.timeFunc = fn
	}
}

// WithTempDir sets the directory fallback dumps are written to. Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(s *SnapshotFile) {
		s.tempDir = dir
	}
}

// WithLogger sets the logger used for load notices and fallback stages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SnapshotFile) {
		s.logger = logger
	}
}
