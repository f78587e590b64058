package lendstore

import (
	"github.com/arthur-debert/lendstore/internal/matching"
	"github.com/arthur-debert/lendstore/internal/validation"
	"github.com/arthur-debert/lendstore/lendstore/ids"
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/types"
)

// NewBookID mints an identifier no record currently holds. It is not reserved: AddBook
// still rejects it if something claims it first.
func (l *Library) NewBookID() types.BookID {
	id, _ := storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.BookID, error) {
		return types.BookID(l.mintLocked()), nil
	})
	return id
}

// AddBook inserts book with its own identifier.
//
// It fails with ErrAlreadyAdded when the identifier is live on any record or when a book
// with the same title and author exists, and with ErrInvalidInput when a field is unusable.
func (l *Library) AddBook(book types.Book) error {
	return l.lock.Execute(storage.WriteOperation, func() error {
		return l.addBookLocked(book)
	})
}

// CreateBook mints an identifier and adds the book in one step.
func (l *Library) CreateBook(title, author string, quantity uint32) (types.Book, error) {
	return storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.Book, error) {
		book := types.Book{
			ID:       types.BookID(l.mintLocked()),
			Title:    title,
			Author:   author,
			Quantity: quantity,
		}
		if err := l.addBookLocked(book); err != nil {
			return types.Book{}, err
		}
		return book, nil
	})
}

func (l *Library) addBookLocked(book types.Book) error {
	if err := validation.ValidateBook(book); err != nil {
		return invalidInput(book.Title, err)
	}
	if err := validation.ValidateID(ids.ID(book.ID)); err != nil {
		return invalidInput(book.ID.String(), err)
	}
	if l.takenLocked(ids.ID(book.ID)) {
		return alreadyAdded(book.ID.String())
	}
	if _, dup := l.findDuplicateLocked(book.Title, book.Author, 0); dup {
		return alreadyAdded(book.Title)
	}

	l.books.Set(book.ID, book)
	l.logger.Info("book added", "id", book.ID, "title", book.Title, "quantity", book.Quantity)
	return nil
}

// RemoveBook deletes a book and returns it. Any checkout that references the book, returned
// or not, blocks removal.
func (l *Library) RemoveBook(id types.BookID) (types.Book, error) {
	return storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.Book, error) {
		book, ok := l.books.Get(id)
		if !ok {
			return types.Book{}, unknownBook(id.String())
		}

		var blocking []types.CheckoutID
		for pair := l.checkouts.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Book == id {
				blocking = append(blocking, pair.Key)
			}
		}
		if len(blocking) > 0 {
			return types.Book{}, &ManipulationError{
				Kind:      ErrOutstandingCheckouts,
				Input:     book.Title,
				Checkouts: blocking,
			}
		}

		l.books.Delete(id)
		l.logger.Info("book removed", "id", id, "title", book.Title)
		return book, nil
	})
}

// Book returns the book with the given identifier.
func (l *Library) Book(id types.BookID) (types.Book, bool) {
	var (
		book types.Book
		ok   bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		book, ok = l.books.Get(id)
		return nil
	})
	return book, ok
}

// ResolveBook finds a book from user input: an encoded book identifier, or failing that
// the first book in insertion order whose title matches.
func (l *Library) ResolveBook(text string) (types.Book, bool) {
	var (
		book types.Book
		ok   bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		book, ok = l.resolveBookLocked(text)
		return nil
	})
	return book, ok
}

func (l *Library) resolveBookLocked(text string) (types.Book, bool) {
	if id, err := ids.Expect(text, l.classifierLocked(), ids.ClassBook); err == nil {
		return l.books.Get(types.BookID(id))
	}
	for pair := l.books.Oldest(); pair != nil; pair = pair.Next() {
		if matching.SameText(pair.Value.Title, text) {
			return pair.Value, true
		}
	}
	return types.Book{}, false
}

// BookEdit is the editable part of a book. It has no identifier, so an edit can never
// rebind a book to another id.
type BookEdit struct {
	Title    string
	Author   string
	Quantity uint32
}

// UpdateBook resolves text like ResolveBook and lets edit change the book in place. The
// edited book is validated again, including the duplicate check against other books,
// before anything is stored. An error from edit aborts the update and is returned as is.
func (l *Library) UpdateBook(text string, edit func(*BookEdit) error) (types.Book, error) {
	return storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.Book, error) {
		book, ok := l.resolveBookLocked(text)
		if !ok {
			return types.Book{}, unknownBook(text)
		}

		e := BookEdit{Title: book.Title, Author: book.Author, Quantity: book.Quantity}
		if err := edit(&e); err != nil {
			return types.Book{}, err
		}

		updated := types.Book{ID: book.ID, Title: e.Title, Author: e.Author, Quantity: e.Quantity}
		if err := validation.ValidateBook(updated); err != nil {
			return types.Book{}, invalidInput(text, err)
		}
		if _, dup := l.findDuplicateLocked(updated.Title, updated.Author, book.ID); dup {
			return types.Book{}, alreadyAdded(updated.Title)
		}

		l.books.Set(book.ID, updated)
		l.logger.Info("book updated", "id", book.ID, "title", updated.Title, "quantity", updated.Quantity)
		return updated, nil
	})
}

// SetQuantity changes how many copies of a book the library owns.
func (l *Library) SetQuantity(text string, quantity uint32) (types.Book, error) {
	return l.UpdateBook(text, func(e *BookEdit) error {
		e.Quantity = quantity
		return nil
	})
}
