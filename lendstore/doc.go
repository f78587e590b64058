/*
Package lendstore is an in-process store for a small lending library: books,
the members who borrow them, and the checkouts that move a copy from the shelf
to a reader and back.

# Records

Every record is keyed by a 32-bit identifier minted by package ids. Books,
users and checkouts share one identifier space, so an encoded id typed by a
member names at most one record. Each class has its own Go type
(types.BookID, types.UserID, types.CheckoutID) and the Decode*ID methods
report a wrong-class id as an *ids.MismatchError.

Books are unique by title and author, compared case-insensitively over ASCII
with whitespace taken literally:

	lib.CreateBook("Chess Basics", "A. Author", 2) // ok
	lib.CreateBook("chess basics", "a. author", 1) // ErrAlreadyAdded
	lib.CreateBook("Chess  Basics", "A. Author", 1) // ok, the double space makes it distinct

A book cannot be removed while any checkout still references it.

# Checkouts

A checkout moves forward through four states:

	PreTransact -> Reading -> ReturnVerifyNeeded -> Done

RequestCheckout creates it, ApproveHandout records who handed the copy over
and sets the due date, ReportReturn marks the copy as back, and ApproveReturn
confirms it. The two approvals require an Authorizer that accepts the
approver, and the approver may not be the renter.

# Concurrency

A Library is safe for concurrent use. Reads share a read lock, and each
mutation validates and applies under one write lock, so a failed operation
never leaves a partial change behind. The iterators returned by Books, Users,
Checkouts and friends hold the read lock while the loop runs; do not call
mutating methods from inside the loop body.

# Persistence

Snapshot returns the whole library as a storage.Snapshot, and FromSnapshot
rebuilds a library from one after checking every invariant. Save and TrySave
write the snapshot through a storage backend while holding the read lock.
*/
package lendstore
