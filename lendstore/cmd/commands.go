package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/arthur-debert/lendstore/lendstore"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/search"
	"github.com/arthur-debert/lendstore/types"
)

func commandTable() []Command {
	bookArg := ArgSpec{Name: "book", Description: "Book id or title", Required: true}
	checkoutArg := ArgSpec{Name: "checkout", Description: "Checkout id", Required: true}

	return []Command{
		{
			Group: "book", Name: "add", Description: "Add a book to the catalogue",
			Args: []ArgSpec{
				{Name: "title", Description: "Book title", Required: true},
				{Name: "author", Description: "Book author", Required: true},
			},
			Flags:   []FlagSpec{{Name: "quantity", Short: "q", Description: "Number of copies", Default: uint32(1)}},
			Mutates: true,
			Run:     runBookAdd,
		},
		{
			Group: "book", Name: "remove", Description: "Remove a book that was never checked out",
			Args: []ArgSpec{bookArg}, Mutates: true, Run: runBookRemove,
		},
		{Group: "book", Name: "list", Description: "List the catalogue", Run: runBookList},
		{
			Group: "book", Name: "search", Description: "Find books by title or author",
			Args: []ArgSpec{{Name: "query", Description: "Text to look for", Required: true}},
			Flags: []FlagSpec{
				{Name: "field", Description: "Only search this field (title|author)", Default: ""},
				{Name: "exact", Short: "e", Description: "Match the whole field", Default: false},
				{Name: "case-sensitive", Description: "Match letter case", Default: false},
				{Name: "limit", Short: "n", Description: "Maximum number of results (0 for all)", Default: uint(0)},
			},
			Run: runBookSearch,
		},
		{Group: "book", Name: "show", Description: "Show a book and its checkouts", Args: []ArgSpec{bookArg}, Run: runBookShow},
		{
			Group: "book", Name: "set-quantity", Description: "Change the number of copies of a book",
			Args: []ArgSpec{bookArg, {Name: "quantity", Description: "New number of copies", Required: true}},
			Mutates: true, Run: runBookSetQuantity,
		},
		{
			Group: "book", Name: "edit", Description: "Correct the title or author of a book",
			Args: []ArgSpec{bookArg},
			Flags: []FlagSpec{
				{Name: "title", Description: "New title", Default: ""},
				{Name: "author", Description: "New author", Default: ""},
			},
			Mutates: true, Run: runBookEdit,
		},
		{
			Group: "user", Name: "add", Description: "Register a member",
			Args: []ArgSpec{
				{Name: "chat-id", Description: "Chat identity", Required: true},
				{Name: "name", Description: "Display name"},
			},
			Mutates: true, Run: runUserAdd,
		},
		{Group: "user", Name: "list", Description: "List members", Run: runUserList},
		{
			Group: "checkout", Name: "request", Description: "Ask to borrow a book",
			Args: []ArgSpec{bookArg}, NeedsActor: true, Mutates: true, Run: runCheckoutRequest,
		},
		{
			Group: "checkout", Name: "handout", Description: "Approve handing a requested book over",
			Args: []ArgSpec{checkoutArg}, NeedsActor: true, Mutates: true, Run: transitionCommand((*lendstore.Library).ApproveHandout),
		},
		{
			Group: "checkout", Name: "return", Description: "Report a book as returned",
			Args: []ArgSpec{checkoutArg}, NeedsActor: true, Mutates: true, Run: transitionCommand((*lendstore.Library).ReportReturn),
		},
		{
			Group: "checkout", Name: "verify", Description: "Confirm a returned book is back",
			Args: []ArgSpec{checkoutArg}, NeedsActor: true, Mutates: true, Run: transitionCommand((*lendstore.Library).ApproveReturn),
		},
		{
			Group: "checkout", Name: "list", Description: "List checkouts that are not done",
			Flags: []FlagSpec{
				{Name: "all", Short: "a", Description: "Include finished checkouts", Default: false},
				{Name: "mine", Short: "m", Description: "Only checkouts of the acting member", Default: false},
			},
			Run: runCheckoutList,
		},
		{Group: "checkout", Name: "overdue", Description: "List books kept past their due date", Run: runCheckoutOverdue},
		{Name: "status", Description: "Show library totals", Run: runStatus},
		{Name: "save", Description: "Write the library to disk now", Run: runSave},
		{
			Name: "restore", Description: "Replace the library with an emergency dump",
			Args: []ArgSpec{{Name: "dump", Description: "Path of a lendstore-dump-*.yaml file", Required: true}},
			NoShell: true, Fresh: true, Run: runRestore,
		},
	}
}

func runBookAdd(s *session, inv *invocation) (any, error) {
	quantity, err := inv.flags.GetUint32("quantity")
	if err != nil {
		return nil, err
	}
	book, err := s.lib.CreateBook(inv.arg(0), inv.arg(1), quantity)
	if err != nil {
		return nil, err
	}
	return bookList{{ID: book.ID, Title: book.Title, Author: book.Author, Quantity: book.Quantity, Available: book.Quantity}}, nil
}

func resolveBook(s *session, text string) (types.Book, error) {
	book, ok := s.lib.ResolveBook(text)
	if !ok {
		return types.Book{}, &lendstore.ManipulationError{Kind: lendstore.ErrUnknownBook, Input: text}
	}
	return book, nil
}

func runBookRemove(s *session, inv *invocation) (any, error) {
	book, err := resolveBook(s, inv.arg(0))
	if err != nil {
		return nil, err
	}
	if _, err := s.lib.RemoveBook(book.ID); err != nil {
		return nil, err
	}
	return message(fmt.Sprintf("Removed %q (%s)", book.Title, book.ID)), nil
}

func runBookList(s *session, _ *invocation) (any, error) {
	return bookRows(s, slices.Collect(s.lib.Books())), nil
}

func bookRows(s *session, books []types.Book) bookList {
	out := make(map[types.BookID]uint32)
	for c := range s.lib.Outstanding() {
		out[c.Book]++
	}
	rows := make(bookList, 0, len(books))
	for _, b := range books {
		available := uint32(0)
		if b.Quantity > out[b.ID] {
			available = b.Quantity - out[b.ID]
		}
		rows = append(rows, bookRow{ID: b.ID, Title: b.Title, Author: b.Author, Quantity: b.Quantity, Available: available})
	}
	return rows
}

func runBookSearch(s *session, inv *invocation) (any, error) {
	opts := search.Options{Query: inv.arg(0), Highlight: true}
	if name, _ := inv.flags.GetString("field"); name != "" {
		field, ok := search.ParseField(name)
		if !ok {
			return nil, NewUsageError("book search", fmt.Sprintf("unknown field %q", name), "Use --field title or --field author")
		}
		opts.Fields = []search.Field{field}
	}
	opts.ExactMatch, _ = inv.flags.GetBool("exact")
	opts.CaseSensitive, _ = inv.flags.GetBool("case-sensitive")
	limit, _ := inv.flags.GetUint("limit")
	opts.MaxResults = int(limit)

	return searchList(search.NewEngine(s.lib).Search(opts)), nil
}

type bookDetail struct {
	Book      bookRow      `json:"book" yaml:"book"`
	Checkouts checkoutList `json:"checkouts" yaml:"checkouts"`
}

func (d bookDetail) Header() []string { return bookList{}.Header() }

func (d bookDetail) Rows() [][]string {
	rows := bookList{d.Book}.Rows()
	for _, c := range d.Checkouts {
		rows = append(rows, []string{"  " + c.ID.String(), c.Renter, c.Status.String(), "", ""})
	}
	return rows
}

func runBookShow(s *session, inv *invocation) (any, error) {
	book, err := resolveBook(s, inv.arg(0))
	if err != nil {
		return nil, err
	}
	var history []types.Checkout
	for c := range s.lib.Checkouts() {
		if c.Book == book.ID {
			history = append(history, c)
		}
	}
	return bookDetail{Book: bookRows(s, []types.Book{book})[0], Checkouts: checkoutRows(s, history)}, nil
}

func runBookSetQuantity(s *session, inv *invocation) (any, error) {
	n, err := strconv.ParseUint(inv.arg(1), 10, 32)
	if err != nil {
		return nil, NewUsageError("book set-quantity", fmt.Sprintf("%q is not a number of copies", inv.arg(1)))
	}
	book, err := s.lib.SetQuantity(inv.arg(0), uint32(n))
	if err != nil {
		return nil, err
	}
	return bookRows(s, []types.Book{book}), nil
}

func runBookEdit(s *session, inv *invocation) (any, error) {
	title, _ := inv.flags.GetString("title")
	author, _ := inv.flags.GetString("author")
	if title == "" && author == "" {
		return nil, NewUsageError("book edit", "nothing to change", "Pass --title and/or --author")
	}
	book, err := s.lib.UpdateBook(inv.arg(0), func(e *lendstore.BookEdit) error {
		if title != "" {
			e.Title = title
		}
		if author != "" {
			e.Author = author
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bookRows(s, []types.Book{book}), nil
}

func runUserAdd(s *session, inv *invocation) (any, error) {
	user, created, err := s.lib.EnsureUser(inv.arg(0), inv.arg(1))
	if err != nil {
		return nil, err
	}
	if !created {
		return message(fmt.Sprintf("%s is already a member (%s)", user.ChatID, user.ID)), nil
	}
	return message(fmt.Sprintf("Welcome %s (%s)", user.DisplayName, user.ID)), nil
}

func runUserList(s *session, _ *invocation) (any, error) {
	var rows userList
	for u := range s.lib.Users() {
		rows = append(rows, userRow{ID: u.ID, ChatID: u.ChatID, DisplayName: u.DisplayName, Approver: s.isApprover(u)})
	}
	return rows, nil
}

func runCheckoutRequest(s *session, inv *invocation) (any, error) {
	book, err := resolveBook(s, inv.arg(0))
	if err != nil {
		return nil, err
	}
	c, err := s.lib.RequestCheckout(inv.actor.ID, book.ID)
	if err != nil {
		return nil, err
	}
	return checkoutRows(s, []types.Checkout{c}), nil
}

type transitionFunc func(*lendstore.Library, types.CheckoutID, types.UserID) (types.Checkout, error)

func transitionCommand(step transitionFunc) func(*session, *invocation) (any, error) {
	return func(s *session, inv *invocation) (any, error) {
		id, err := s.lib.DecodeCheckoutID(inv.arg(0))
		if err != nil {
			return nil, err
		}
		c, err := step(s.lib, id, inv.actor.ID)
		if err != nil {
			return nil, err
		}
		return checkoutRows(s, []types.Checkout{c}), nil
	}
}

func runCheckoutList(s *session, inv *invocation) (any, error) {
	all, _ := inv.flags.GetBool("all")
	mine, _ := inv.flags.GetBool("mine")

	seq := s.lib.Outstanding()
	if all {
		seq = s.lib.Checkouts()
	}
	list := slices.Collect(seq)

	if mine {
		actor, err := s.actor(inv.chatID)
		if err != nil {
			return nil, err
		}
		list = slices.DeleteFunc(list, func(c types.Checkout) bool { return c.Renter != actor.ID })
	}
	return checkoutRows(s, list), nil
}

func runCheckoutOverdue(s *session, _ *invocation) (any, error) {
	return checkoutRows(s, slices.Collect(s.lib.Overdue(time.Now()))), nil
}

// checkoutRows resolves titles and names. It must not run inside a library iterator.
func checkoutRows(s *session, list []types.Checkout) checkoutList {
	rows := make(checkoutList, 0, len(list))
	for _, c := range list {
		row := checkoutRow{
			ID:          c.ID,
			Book:        c.Book,
			Status:      c.Status,
			RequestedAt: c.RequestedAt,
			DueDate:     c.DueDate,
		}
		if b, ok := s.lib.Book(c.Book); ok {
			row.Title = b.Title
		}
		row.Renter = userName(s, c.Renter)
		if c.HandoutApproval != nil {
			row.HandedOutBy = userName(s, c.HandoutApproval.Approver)
		}
		if c.ReturnApproval != nil {
			row.VerifiedBy = userName(s, c.ReturnApproval.Approver)
		}
		rows = append(rows, row)
	}
	return rows
}

func userName(s *session, id types.UserID) string {
	if u, ok := s.lib.User(id); ok {
		return u.ChatID
	}
	return id.String()
}

func runStatus(s *session, _ *invocation) (any, error) {
	counts := s.lib.Counts()
	overdue := 0
	for range s.lib.Overdue(time.Now()) {
		overdue++
	}
	return statusView{
		DB:          s.file.Path(),
		Books:       counts.Books,
		Users:       counts.Users,
		Checkouts:   counts.Checkouts,
		Outstanding: counts.Outstanding,
		Overdue:     overdue,
	}, nil
}

func runSave(s *session, _ *invocation) (any, error) {
	if err := s.save(); err != nil {
		return nil, err
	}
	return message("Saved to " + s.file.Path()), nil
}

// runRestore replaces the session's library with a dump and saves it over the snapshot.
func runRestore(s *session, inv *invocation) (any, error) {
	data, err := os.ReadFile(inv.arg(0))
	if err != nil {
		return nil, NewUsageError("restore", err.Error())
	}
	snap, err := store.ReadDump(data)
	if err != nil {
		return nil, err
	}
	lib, err := lendstore.FromSnapshot(snap, libraryOptions(s.cfg, s.logger)...)
	if err != nil {
		return nil, err
	}
	s.lib = lib
	if err := s.save(); err != nil {
		return nil, err
	}
	counts := lib.Counts()
	return message(fmt.Sprintf("Restored %d books, %d users and %d checkouts into %s",
		counts.Books, counts.Users, counts.Checkouts, s.file.Path())), nil
}
