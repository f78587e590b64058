package store

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleSnapshot() *storage.Snapshot {
	due := fixedNow.Add(7 * 24 * time.Hour)
	snap := storage.NewSnapshot(time.Time{})
	snap.Books = []types.Book{
		{ID: 0x8C1F2A40, Title: "Chess Basics", Author: "A. Author", Quantity: 2},
		{ID: 0x10000001, Title: "Endgames", Author: "B. Writer", Quantity: 1},
	}
	snap.Users = []types.User{
		{ID: 0x20000000, ChatID: "alice", DisplayName: "Alice"},
		{ID: 0x20000001, ChatID: "bob", DisplayName: "Bob"},
	}
	snap.Checkouts = []types.Checkout{
		{
			ID:              0x30000000,
			Renter:          0x20000000,
			Book:            0x8C1F2A40,
			Status:          types.Reading,
			RequestedAt:     fixedNow.Add(-time.Hour),
			DueDate:         &due,
			HandoutApproval: &types.Approval{Approver: 0x20000001, At: fixedNow},
		},
	}
	return snap
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func openMock(t *testing.T, opts ...Option) (*SnapshotFile, *MockFileSystem, *MockFileLockFactory) {
	t.Helper()
	mockFS := NewMockFileSystem()
	locks := NewMockFileLockFactory()
	base := []Option{
		WithFileSystem(mockFS),
		WithFileLockFactory(locks),
		WithTimeFunc(func() time.Time { return fixedNow }),
		WithTempDir("/tmp"),
		WithLogger(quietLogger()),
	}
	return Open("library-db.bin", append(base, opts...)...), mockFS, locks
}

func TestLoadWithoutPriorState(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		sf, _, _ := openMock(t)
		snap, err := sf.Load()
		if err != nil || snap != nil {
			t.Fatalf("Load() = (%v, %v), want (nil, nil)", snap, err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.SetFileContent("library-db.bin", []byte{0x80})
		mockFS.ReadFileError = errors.New("permission denied")
		snap, err := sf.Load()
		if err != nil || snap != nil {
			t.Fatalf("Load() = (%v, %v), want (nil, nil)", snap, err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.SetFileContent("library-db.bin", nil)
		snap, err := sf.Load()
		if err != nil || snap != nil {
			t.Fatalf("Load() = (%v, %v), want (nil, nil)", snap, err)
		}
	})
}

func TestLoadCorrupt(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.SetFileContent("library-db.bin", []byte("not a snapshot at all"))
		_, err := sf.Load()
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Fatalf("Load() error = %v, want ErrCorruptSnapshot", err)
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		snap := sampleSnapshot()
		snap.Metadata.Version = "2"
		data, err := encodeSnapshot(snap)
		if err != nil {
			t.Fatal(err)
		}
		mockFS.SetFileContent("library-db.bin", data)

		_, err = sf.Load()
		if !errors.Is(err, ErrCorruptSnapshot) {
			t.Fatalf("Load() error = %v, want ErrCorruptSnapshot", err)
		}
		var perr *PersistenceError
		if !errors.As(err, &perr) || perr.Op != "decode" {
			t.Errorf("expected decode PersistenceError, got %#v", err)
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sf, mockFS, locks := openMock(t)
	want := sampleSnapshot()

	if err := sf.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if mockFS.FileExists("library-db.bin.tmp") {
		t.Error("temp file left behind")
	}
	if lock := locks.GetLock("library-db.bin.lock"); lock == nil || lock.IsLocked() {
		t.Error("file lock not released after save")
	}
	if !want.Metadata.SavedAt.IsZero() {
		t.Error("Save modified the caller's snapshot")
	}

	got, err := sf.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Metadata.SavedAt.Equal(fixedNow) {
		t.Errorf("SavedAt = %v, want %v", got.Metadata.SavedAt, fixedNow)
	}

	want.Metadata.SavedAt = fixedNow
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Saving what was loaded produces the same bytes.
	first, _ := mockFS.GetFileContent("library-db.bin")
	if err := sf.Save(got); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, _ := mockFS.GetFileContent("library-db.bin")
	if !bytes.Equal(first, second) {
		t.Error("save(load(save(x))) differs from save(x)")
	}
}

func TestSaveFailures(t *testing.T) {
	t.Run("write error", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.WriteFileError = errors.New("disk full")

		err := sf.Save(sampleSnapshot())
		if !errors.Is(err, ErrPersistence) {
			t.Fatalf("Save() error = %v, want ErrPersistence", err)
		}
		var perr *PersistenceError
		if !errors.As(err, &perr) || perr.Op != "write" {
			t.Errorf("expected write PersistenceError, got %#v", err)
		}
	})

	t.Run("rename error cleans up", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.RenameError = errors.New("cross-device link")

		if err := sf.Save(sampleSnapshot()); !errors.Is(err, ErrPersistence) {
			t.Fatalf("Save() error = %v, want ErrPersistence", err)
		}
		if mockFS.FileExists("library-db.bin.tmp") {
			t.Error("temp file not removed after failed rename")
		}
		if mockFS.FileExists("library-db.bin") {
			t.Error("snapshot file should not exist")
		}
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		sf, _, locks := openMock(t)
		locks.GetLock("library-db.bin.lock").Hold()

		err := sf.Save(sampleSnapshot())
		var perr *PersistenceError
		if !errors.As(err, &perr) || perr.Op != "lock" {
			t.Fatalf("expected lock PersistenceError, got %v", err)
		}
	})

	t.Run("lock error", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		locks := NewMockFileLockFactory()
		locks.DefaultLockError = errors.New("no locks on this filesystem")
		sf := Open("library-db.bin", WithFileSystem(mockFS), WithFileLockFactory(locks), WithLogger(quietLogger()))

		if err := sf.Save(sampleSnapshot()); !errors.Is(err, ErrPersistence) {
			t.Fatalf("Save() error = %v, want ErrPersistence", err)
		}
	})
}

func TestSnapshotFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library-db.bin")
	sf := Open(path, WithLogger(quietLogger()), WithTimeFunc(func() time.Time { return fixedNow }))

	if snap, err := sf.Load(); err != nil || snap != nil {
		t.Fatalf("fresh Load() = (%v, %v)", snap, err)
	}

	want := sampleSnapshot()
	if err := sf.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened := Open(path, WithLogger(quietLogger()))
	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want.Metadata.SavedAt = fixedNow
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("on-disk round trip mismatch (-want +got):\n%s", diff)
	}
	if err := reopened.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDumpYAMLReadable(t *testing.T) {
	snap := sampleSnapshot()
	snap.Metadata.SavedAt = fixedNow

	text, err := DumpYAML(snap)
	if err != nil {
		t.Fatalf("DumpYAML: %v", err)
	}
	for _, want := range []string{"Chess Basics", "RQPSUQA", "reading"} {
		if !strings.Contains(string(text), want) {
			t.Errorf("dump does not mention %q:\n%s", want, text)
		}
	}

	back, err := ReadDump(text)
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if diff := cmp.Diff(snap, back, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("dump round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLockFailures(t *testing.T) {
	t.Run("load reports lock error", func(t *testing.T) {
		sf, mockFS, locks := openMock(t)
		mockFS.SetFileContent("library-db.bin", []byte("anything"))
		lock := locks.GetLock("library-db.bin.lock")
		lock.SetLockError(errors.New("flock: operation not supported"))

		snap, err := sf.Load()
		var perr *PersistenceError
		if snap != nil || !errors.As(err, &perr) || perr.Op != "lock" {
			t.Fatalf("Load() = (%v, %v), want lock PersistenceError", snap, err)
		}

		lock.SetLockError(nil)
		if err := sf.Save(sampleSnapshot()); err != nil {
			t.Fatalf("Save after clearing the error: %v", err)
		}
		if lock.Acquired != 1 {
			t.Errorf("Acquired = %d, want 1", lock.Acquired)
		}
	})

	t.Run("busy lock", func(t *testing.T) {
		sf, mockFS, locks := openMock(t)
		locks.GetLock("library-db.bin.lock").Hold()

		_, err := sf.Load()
		if !errors.Is(err, ErrLockBusy) || !errors.Is(err, ErrPersistence) {
			t.Fatalf("Load() error = %v, want ErrLockBusy", err)
		}
		if err := sf.Save(sampleSnapshot()); !errors.Is(err, ErrLockBusy) {
			t.Fatalf("Save() error = %v, want ErrLockBusy", err)
		}
		if mockFS.FileExists("library-db.bin.tmp") {
			t.Error("temporary file written without the lock")
		}
	})
}
