// Package testutil loads a fixed library for tests that need realistic state without
// building it step by step.
package testutil

import (
	_ "embed"
	"testing"
	"time"

	"github.com/arthur-debert/lendstore/lendstore"
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/types"
)

//go:embed testdata/library.yaml
var libraryYAML []byte

// Approver is the chat id the fixture treats as the librarian.
const Approver = "carol"

// Now is the clock Load installs. The Reading loan is overdue at this time.
var Now = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

// LibraryData gives typed access to every fixture record.
type LibraryData struct {
	// Books
	Chess    types.Book // CHESSAA, 1 copy, only a finished loan
	GoBook   types.Book // GOBOOKA, 2 copies, both outstanding
	RustBook types.Book // RUSTBKA, 1 copy, return awaiting verification

	// Users
	Bob   types.User // BOBBYAA
	Carol types.User // CAROLAA, the approver
	Dave  types.User // DAVEAAA
	Eve   types.User // EVEEAAA

	// Checkouts, one per status
	Returned  types.Checkout // LOANONA, Done
	Reading   types.Checkout // LOANTWA, Reading and overdue at Now
	Verifying types.Checkout // LOANTRA, ReturnVerifyNeeded
	Requested types.Checkout // LOANFRA, PreTransact
}

// Snapshot returns the fixture as it would be read back from a dump.
func Snapshot(t testing.TB) *storage.Snapshot {
	t.Helper()
	snap, err := store.ReadDump(libraryYAML)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return snap
}

// Load builds a library from the fixture. Carol approves and the clock is fixed at Now
// unless opts override them.
func Load(t testing.TB, opts ...lendstore.Option) (*lendstore.Library, *LibraryData) {
	t.Helper()

	base := []lendstore.Option{
		lendstore.WithClock(func() time.Time { return Now }),
		lendstore.WithAuthorizer(lendstore.NewApproverSet(Approver)),
	}
	lib, err := lendstore.FromSnapshot(Snapshot(t), append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	book := func(code string) types.Book {
		t.Helper()
		id, err := lib.DecodeBookID(code)
		if err != nil {
			t.Fatalf("fixture book %s: %v", code, err)
		}
		b, _ := lib.Book(id)
		return b
	}
	user := func(code string) types.User {
		t.Helper()
		id, err := lib.DecodeUserID(code)
		if err != nil {
			t.Fatalf("fixture user %s: %v", code, err)
		}
		u, _ := lib.User(id)
		return u
	}
	checkout := func(code string) types.Checkout {
		t.Helper()
		id, err := lib.DecodeCheckoutID(code)
		if err != nil {
			t.Fatalf("fixture checkout %s: %v", code, err)
		}
		c, _ := lib.Checkout(id)
		return c
	}

	return lib, &LibraryData{
		Chess:     book("CHESSAA"),
		GoBook:    book("GOBOOKA"),
		RustBook:  book("RUSTBKA"),
		Bob:       user("BOBBYAA"),
		Carol:     user("CAROLAA"),
		Dave:      user("DAVEAAA"),
		Eve:       user("EVEEAAA"),
		Returned:  checkout("LOANONA"),
		Reading:   checkout("LOANTWA"),
		Verifying: checkout("LOANTRA"),
		Requested: checkout("LOANFRA"),
	}
}
