// Package store persists a library snapshot to a single file.
//
// Save writes a msgpack encoding to path.tmp and renames it over path while
// holding an flock on path.lock, so readers in other processes never see a
// half-written file. TrySave layers a fallback chain on top of Save for
// shutdown paths where a failed write must not lose the library.
package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/arthur-debert/lendstore/lendstore/storage"
)

// SnapshotFile implements storage.Storage on top of one file.
type SnapshotFile struct {
	path     string
	fs       FileSystem
	lock     FileLock
	timeFunc func() time.Time
	tempDir  string
	logger   *slog.Logger

	lockFactory FileLockFactory
}

var _ storage.Storage = (*SnapshotFile)(nil)

// Open prepares a snapshot file at path. Nothing is read until Load.
func Open(path string, opts ...Option) *SnapshotFile {
	s := &SnapshotFile{
		path:     path,
		timeFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = OSFileSystem{}
	}
	if s.lockFactory == nil {
		s.lockFactory = FlockFactory{}
	}
	if s.tempDir == "" {
		s.tempDir = os.TempDir()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.lock = s.lockFactory.New(lockPath(path))
	return s
}

// Path returns the snapshot file location.
func (s *SnapshotFile) Path() string {
	return s.path
}

// Load reads the snapshot. A missing, unreadable or empty file yields (nil, nil):
// there is no prior state. A file that exists but does not decode, or carries an
// unknown version, yields an error matching ErrCorruptSnapshot.
func (s *SnapshotFile) Load() (*storage.Snapshot, error) {
	var snap *storage.Snapshot
	err := withLock(s.lock, func() error {
		data, err := readSnapshot(s.fs, s.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Info("no snapshot found, starting empty", "path", s.path)
			return nil
		case err != nil:
			s.logger.Warn("snapshot not loaded, starting empty", "path", s.path, "error", err)
			return nil
		}

		snap, err = decodeSnapshot(data)
		if err != nil {
			return &PersistenceError{Op: "decode", Path: s.path, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, lockFailure(s.path, err)
	}
	if snap != nil {
		s.logger.Debug("snapshot loaded",
			"path", s.path,
			"books", len(snap.Books),
			"users", len(snap.Users),
			"checkouts", len(snap.Checkouts),
			"saved_at", snap.Metadata.SavedAt)
	}
	return snap, nil
}

// Save replaces the file with snap. The snapshot's metadata is restamped with the
// current version and time; snap itself is not modified. Every failure is a
// *PersistenceError.
func (s *SnapshotFile) Save(snap *storage.Snapshot) error {
	if snap == nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: errors.New("nil snapshot")}
	}

	out := *snap
	out.Metadata = storage.Metadata{Version: storage.CurrentVersion, SavedAt: s.timeFunc()}
	data, err := encodeSnapshot(&out)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}

	err = withLock(s.lock, func() error {
		if op, err := replaceFile(s.fs, s.path, data); err != nil {
			return &PersistenceError{Op: op, Path: s.path, Err: err}
		}
		return nil
	})
	if err != nil {
		return lockFailure(s.path, err)
	}

	s.logger.Debug("snapshot saved", "path", s.path, "bytes", len(data))
	return nil
}

// lockFailure passes a *PersistenceError through and wraps anything else, which can
// only have come from taking the lock.
func lockFailure(path string, err error) error {
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: "lock", Path: path, Err: err}
}

// Close implements storage.Storage. The lock is only held inside Load and Save.
func (s *SnapshotFile) Close() error {
	return nil
}
