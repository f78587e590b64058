package lendstore

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/types"
	"github.com/google/go-cmp/cmp"
)

func populated(t *testing.T) *Library {
	t.Helper()
	f := newLifecycleFixture(t)
	mustCreateBook(t, f.lib, "Endgames", "B. Writer", 3)
	c, err := f.lib.RequestCheckout(f.renter.ID, f.book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.lib.ApproveHandout(c.ID, f.librarian.ID); err != nil {
		t.Fatal(err)
	}
	return f.lib
}

func TestSnapshotRoundTrip(t *testing.T) {
	lib := populated(t)
	want := lib.Snapshot()

	restored, err := FromSnapshot(want, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if diff := cmp.Diff(want, restored.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if restored.Counts() != lib.Counts() {
		t.Errorf("counts = %+v, want %+v", restored.Counts(), lib.Counts())
	}
}

func TestSaveThroughSnapshotFile(t *testing.T) {
	lib := populated(t)
	mockFS := store.NewMockFileSystem()
	sf := store.Open("library-db.bin",
		store.WithFileSystem(mockFS),
		store.WithFileLockFactory(store.NewMockFileLockFactory()),
		store.WithTimeFunc(func() time.Time { return testNow }),
		store.WithLogger(slog.New(slog.DiscardHandler)),
	)

	if err := lib.Save(sf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := mockFS.GetFileContent("library-db.bin")

	snap, err := sf.Load()
	if err != nil || snap == nil {
		t.Fatalf("Load = %v, %v", snap, err)
	}
	restored, err := FromSnapshot(snap, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if diff := cmp.Diff(lib.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("library mismatch after load (-want +got):\n%s", diff)
	}

	if report := restored.TrySave(sf); !report.Saved() {
		t.Fatalf("TrySave: %+v", report)
	}
	second, _ := mockFS.GetFileContent("library-db.bin")
	if string(first) != string(second) {
		t.Error("saving a loaded library changed the file")
	}
}

func TestFromSnapshotRejectsBrokenInvariants(t *testing.T) {
	base := func() *storage.Snapshot { return populated(t).Snapshot() }

	tests := []struct {
		name   string
		mutate func(s *storage.Snapshot)
	}{
		{"checkout references missing book", func(s *storage.Snapshot) { s.Books = s.Books[1:] }},
		{"duplicate title", func(s *storage.Snapshot) {
			s.Books[1].Title, s.Books[1].Author = s.Books[0].Title, s.Books[0].Author
		}},
		{"id shared across classes", func(s *storage.Snapshot) { s.Users[0].ID = types.UserID(s.Books[0].ID) }},
		{"duplicate chat id", func(s *storage.Snapshot) { s.Users[1].ChatID = s.Users[0].ChatID }},
		{"reading without due date", func(s *storage.Snapshot) { s.Checkouts[0].DueDate = nil }},
		{"zero quantity", func(s *storage.Snapshot) { s.Books[1].Quantity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base()
			tt.mutate(snap)
			if _, err := FromSnapshot(snap); !errors.Is(err, store.ErrCorruptSnapshot) {
				t.Fatalf("FromSnapshot() error = %v, want ErrCorruptSnapshot", err)
			}
		})
	}

	if lib, err := FromSnapshot(nil); err != nil || lib.Counts() != (Counts{}) {
		t.Errorf("FromSnapshot(nil) = %+v, %v", lib, err)
	}
}
