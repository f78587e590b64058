package lendstore

import (
	"iter"
	"time"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Iterators returned here hold the library's read lock for the whole range loop. The lock is
// not reentrant: a loop body that calls any Library method can deadlock, and one that mutates
// will. Collect first (slices.Collect) when the body needs the library.

// Books yields every book in insertion order. The read lock is held while the loop runs.
func (l *Library) Books() iter.Seq[types.Book] {
	return values(l.lock, l.books, nil)
}

// Users yields every user in insertion order. The read lock is held while the loop runs.
func (l *Library) Users() iter.Seq[types.User] {
	return values(l.lock, l.users, nil)
}

// Checkouts yields every checkout in insertion order, returned ones included. The read lock
// is held while the loop runs.
func (l *Library) Checkouts() iter.Seq[types.Checkout] {
	return values(l.lock, l.checkouts, nil)
}

// CheckoutsFor yields the checkouts requested by one user, under the read lock.
func (l *Library) CheckoutsFor(renter types.UserID) iter.Seq[types.Checkout] {
	return values(l.lock, l.checkouts, func(c types.Checkout) bool { return c.Renter == renter })
}

// Outstanding yields checkouts that are not Done, under the read lock.
func (l *Library) Outstanding() iter.Seq[types.Checkout] {
	return values(l.lock, l.checkouts, types.Checkout.Outstanding)
}

// Overdue yields checkouts still in the reader's hands after their due date, under the read
// lock.
func (l *Library) Overdue(now time.Time) iter.Seq[types.Checkout] {
	return values(l.lock, l.checkouts, func(c types.Checkout) bool { return c.Overdue(now) })
}

// values walks m under the read lock each time the sequence is ranged over. The lock is
// released only when the range loop ends, so yield must not call back into the Library.
func values[K comparable, V any](lock *storage.LockManager, m *orderedmap.OrderedMap[K, V], keep func(V) bool) iter.Seq[V] {
	return func(yield func(V) bool) {
		_ = lock.Execute(storage.ReadOperation, func() error {
			for pair := m.Oldest(); pair != nil; pair = pair.Next() {
				if keep != nil && !keep(pair.Value) {
					continue
				}
				if !yield(pair.Value) {
					break
				}
			}
			return nil
		})
	}
}
