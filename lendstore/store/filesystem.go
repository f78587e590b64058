package store

import (
	"errors"
	"io/fs"
	"os"
)

// FileSystem is what SnapshotFile needs from the os package. Tests use MockFileSystem.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// OSFileSystem is the real disk.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error)  { return os.Stat(name) }
func (OSFileSystem) ReadFile(name string) ([]byte, error)   { return os.ReadFile(name) }
func (OSFileSystem) Rename(oldpath, newpath string) error   { return os.Rename(oldpath, newpath) }
func (OSFileSystem) Remove(name string) error               { return os.Remove(name) }
func (OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// errNoSnapshot is returned by readSnapshot when there is nothing to load.
var errNoSnapshot = errors.New("no snapshot")

// readSnapshot returns the bytes at path. A missing, unreadable or empty file is
// errNoSnapshot joined with the cause, so callers can start empty and still log why.
func readSnapshot(fsys FileSystem, path string) ([]byte, error) {
	if _, err := fsys.Stat(path); err != nil {
		return nil, errors.Join(errNoSnapshot, err)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Join(errNoSnapshot, err)
	}
	if len(data) == 0 {
		return nil, errors.Join(errNoSnapshot, errors.New("file is empty"))
	}
	return data, nil
}

// replaceFile writes data beside path and renames it into place. On failure the
// temporary file is removed and op names the step that failed.
func replaceFile(fsys FileSystem, path string, data []byte) (op string, err error) {
	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, data, 0o644); err != nil {
		return "write", err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return "rename", err
	}
	return "", nil
}
