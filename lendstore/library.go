package lendstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arthur-debert/lendstore/internal/matching"
	"github.com/arthur-debert/lendstore/internal/validation"
	"github.com/arthur-debert/lendstore/lendstore/ids"
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Library holds every book, user and checkout. The zero value is not usable; call New or
// FromSnapshot.
type Library struct {
	lock *storage.LockManager
	gen  *ids.Generator

	books     *orderedmap.OrderedMap[types.BookID, types.Book]
	users     *orderedmap.OrderedMap[types.UserID, types.User]
	checkouts *orderedmap.OrderedMap[types.CheckoutID, types.Checkout]
	byChatID  map[string]types.UserID

	now        func() time.Time
	loanPeriod time.Duration
	auth       Authorizer
	logger     *slog.Logger
}

// New creates an empty library.
func New(opts ...Option) *Library {
	l := &Library{
		lock:       storage.NewLockManager(),
		books:      orderedmap.New[types.BookID, types.Book](),
		users:      orderedmap.New[types.UserID, types.User](),
		checkouts:  orderedmap.New[types.CheckoutID, types.Checkout](),
		byChatID:   make(map[string]types.UserID),
		now:        time.Now,
		loanPeriod: DefaultLoanPeriod,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.gen == nil {
		l.gen = ids.NewGenerator(nil)
	}
	if l.auth == nil {
		l.auth = denyAll{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// FromSnapshot rebuilds a library and checks every invariant on the way in. A nil
// snapshot yields an empty library. Violations are reported as store.ErrCorruptSnapshot.
func FromSnapshot(snap *storage.Snapshot, opts ...Option) (*Library, error) {
	l := New(opts...)
	if snap == nil {
		return l, nil
	}

	for _, b := range snap.Books {
		if err := l.checkNewID(ids.ID(b.ID)); err != nil {
			return nil, corrupt("book", b.ID.String(), err)
		}
		if err := validation.ValidateBook(b); err != nil {
			return nil, corrupt("book", b.ID.String(), err)
		}
		if dup, ok := l.findDuplicateLocked(b.Title, b.Author, 0); ok {
			return nil, corrupt("book", b.ID.String(), fmt.Errorf("duplicates %s", dup.ID))
		}
		l.books.Set(b.ID, b)
	}

	for _, u := range snap.Users {
		if err := l.checkNewID(ids.ID(u.ID)); err != nil {
			return nil, corrupt("user", u.ID.String(), err)
		}
		if err := validation.ValidateUser(u); err != nil {
			return nil, corrupt("user", u.ID.String(), err)
		}
		if other, ok := l.byChatID[u.ChatID]; ok {
			return nil, corrupt("user", u.ID.String(), fmt.Errorf("chat id %q also used by %s", u.ChatID, other))
		}
		l.users.Set(u.ID, u)
		l.byChatID[u.ChatID] = u.ID
	}

	for _, c := range snap.Checkouts {
		if err := l.checkNewID(ids.ID(c.ID)); err != nil {
			return nil, corrupt("checkout", c.ID.String(), err)
		}
		if err := validation.ValidateCheckout(c); err != nil {
			return nil, corrupt("checkout", c.ID.String(), err)
		}
		if _, ok := l.books.Get(c.Book); !ok {
			return nil, corrupt("checkout", c.ID.String(), fmt.Errorf("references missing book %s", c.Book))
		}
		if _, ok := l.users.Get(c.Renter); !ok {
			return nil, corrupt("checkout", c.ID.String(), fmt.Errorf("references missing user %s", c.Renter))
		}
		l.checkouts.Set(c.ID, c)
	}

	l.logger.Debug("library restored",
		"books", l.books.Len(),
		"users", l.users.Len(),
		"checkouts", l.checkouts.Len())
	return l, nil
}

func corrupt(class, id string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", store.ErrCorruptSnapshot, class, id, err)
}

// checkNewID rejects ids below MinID and ids already live on any record.
func (l *Library) checkNewID(id ids.ID) error {
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	if class, ok := l.classifyLocked(id); ok {
		return fmt.Errorf("identifier %s already used by a %s", id, class)
	}
	return nil
}

// Classify implements ids.Classifier. Users are checked first, then books, then checkouts.
func (l *Library) Classify(id ids.ID) (ids.Class, bool) {
	var (
		class ids.Class
		ok    bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		class, ok = l.classifyLocked(id)
		return nil
	})
	return class, ok
}

func (l *Library) classifyLocked(id ids.ID) (ids.Class, bool) {
	if _, ok := l.users.Get(types.UserID(id)); ok {
		return ids.ClassUser, true
	}
	if _, ok := l.books.Get(types.BookID(id)); ok {
		return ids.ClassBook, true
	}
	if _, ok := l.checkouts.Get(types.CheckoutID(id)); ok {
		return ids.ClassCheckout, true
	}
	return 0, false
}

func (l *Library) classifierLocked() ids.Classifier {
	return ids.ClassifierFunc(l.classifyLocked)
}

func (l *Library) takenLocked(id ids.ID) bool {
	_, ok := l.classifyLocked(id)
	return ok
}

// mintLocked returns an identifier no record holds.
func (l *Library) mintLocked() ids.ID {
	return l.gen.Mint(l.takenLocked)
}

// DecodeBookID decodes text and requires it to name a live book.
func (l *Library) DecodeBookID(text string) (types.BookID, error) {
	id, err := l.expect(text, ids.ClassBook)
	return types.BookID(id), err
}

// DecodeUserID decodes text and requires it to name a live user.
func (l *Library) DecodeUserID(text string) (types.UserID, error) {
	id, err := l.expect(text, ids.ClassUser)
	return types.UserID(id), err
}

// DecodeCheckoutID decodes text and requires it to name a live checkout.
func (l *Library) DecodeCheckoutID(text string) (types.CheckoutID, error) {
	id, err := l.expect(text, ids.ClassCheckout)
	return types.CheckoutID(id), err
}

func (l *Library) expect(text string, want ids.Class) (ids.ID, error) {
	return storage.ExecuteWithResult(l.lock, storage.ReadOperation, func() (ids.ID, error) {
		return ids.Expect(text, l.classifierLocked(), want)
	})
}

// findDuplicateLocked returns a book other than skip whose title and author both match.
func (l *Library) findDuplicateLocked(title, author string, skip types.BookID) (types.Book, bool) {
	for pair := l.books.Oldest(); pair != nil; pair = pair.Next() {
		b := pair.Value
		if b.ID == skip {
			continue
		}
		if matching.SameText(b.Title, title) && matching.SameText(b.Author, author) {
			return b, true
		}
	}
	return types.Book{}, false
}

// Counts holds per-class totals.
type Counts struct {
	Books       int `json:"books" yaml:"books"`
	Users       int `json:"users" yaml:"users"`
	Checkouts   int `json:"checkouts" yaml:"checkouts"`
	Outstanding int `json:"outstanding" yaml:"outstanding"`
}

// Counts returns the number of records of each class.
func (l *Library) Counts() Counts {
	var c Counts
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		c.Books = l.books.Len()
		c.Users = l.users.Len()
		c.Checkouts = l.checkouts.Len()
		for pair := l.checkouts.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Outstanding() {
				c.Outstanding++
			}
		}
		return nil
	})
	return c
}
