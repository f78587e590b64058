package lendstore

import (
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/types"
)

// Snapshot copies the library into a storage.Snapshot with every collection in insertion
// order.
func (l *Library) Snapshot() *storage.Snapshot {
	snap, _ := storage.ExecuteWithResult(l.lock, storage.ReadOperation, func() (*storage.Snapshot, error) {
		return l.snapshotLocked(), nil
	})
	return snap
}

func (l *Library) snapshotLocked() *storage.Snapshot {
	snap := storage.NewSnapshot(l.now())
	snap.Books = make([]types.Book, 0, l.books.Len())
	for pair := l.books.Oldest(); pair != nil; pair = pair.Next() {
		snap.Books = append(snap.Books, pair.Value)
	}
	snap.Users = make([]types.User, 0, l.users.Len())
	for pair := l.users.Oldest(); pair != nil; pair = pair.Next() {
		snap.Users = append(snap.Users, pair.Value)
	}
	snap.Checkouts = make([]types.Checkout, 0, l.checkouts.Len())
	for pair := l.checkouts.Oldest(); pair != nil; pair = pair.Next() {
		snap.Checkouts = append(snap.Checkouts, pair.Value)
	}
	return snap
}

// Save writes the library to st. Writers wait until the write finishes.
func (l *Library) Save(st storage.Storage) error {
	return l.lock.Execute(storage.ReadOperation, func() error {
		return st.Save(l.snapshotLocked())
	})
}

// TrySave writes the library through the fallback chain of store.SnapshotFile.TrySave and
// never fails.
func (l *Library) TrySave(sf *store.SnapshotFile) store.SaveReport {
	report, _ := storage.ExecuteWithResult(l.lock, storage.ReadOperation, func() (store.SaveReport, error) {
		return sf.TrySave(l.snapshotLocked()), nil
	})
	return report
}
