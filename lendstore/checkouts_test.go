package lendstore

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/arthur-debert/lendstore/types"
)

type lifecycleFixture struct {
	lib       *Library
	book      types.Book
	renter    types.User
	librarian types.User
	stranger  types.User
}

func newLifecycleFixture(t *testing.T, opts ...Option) lifecycleFixture {
	t.Helper()
	opts = append([]Option{WithAuthorizer(NewApproverSet("librarian", "alice"))}, opts...)
	l := newTestLibrary(t, opts...)
	return lifecycleFixture{
		lib:       l,
		book:      mustCreateBook(t, l, "Chess Basics", "A. Author", 1),
		renter:    mustEnsureUser(t, l, "alice"),
		librarian: mustEnsureUser(t, l, "librarian"),
		stranger:  mustEnsureUser(t, l, "mallory"),
	}
}

func TestCheckoutLifecycle(t *testing.T) {
	f := newLifecycleFixture(t)
	l := f.lib

	c, err := l.RequestCheckout(f.renter.ID, f.book.ID)
	if err != nil {
		t.Fatalf("RequestCheckout: %v", err)
	}
	if c.Status != types.PreTransact || !c.RequestedAt.Equal(testNow) || c.DueDate != nil {
		t.Fatalf("new checkout = %+v", c)
	}

	t.Run("return before handout is illegal", func(t *testing.T) {
		_, err := l.ReportReturn(c.ID, f.renter.ID)
		if !errors.Is(err, ErrIllegalTransition) || errors.Is(err, ErrUnauthorized) {
			t.Fatalf("ReportReturn on PreTransact: %v", err)
		}
	})

	t.Run("renter cannot approve own handout", func(t *testing.T) {
		// alice is an approver, but not for her own checkout.
		_, err := l.ApproveHandout(c.ID, f.renter.ID)
		if !errors.Is(err, ErrUnauthorized) || !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("self approval: %v", err)
		}
	})

	t.Run("non approver is refused", func(t *testing.T) {
		_, err := l.ApproveHandout(c.ID, f.stranger.ID)
		var terr *TransitionError
		if !errors.As(err, &terr) || !terr.Unauthorized || terr.Actor != f.stranger.ID {
			t.Fatalf("stranger approval: %v", err)
		}
	})

	if got, _ := l.Checkout(c.ID); got.Status != types.PreTransact || got.HandoutApproval != nil {
		t.Fatalf("refused approvals changed the checkout: %+v", got)
	}

	c, err = l.ApproveHandout(c.ID, f.librarian.ID)
	if err != nil {
		t.Fatalf("ApproveHandout: %v", err)
	}
	if c.Status != types.Reading {
		t.Errorf("status = %s, want reading", c.Status)
	}
	if c.HandoutApproval == nil || c.HandoutApproval.Approver != f.librarian.ID || !c.HandoutApproval.At.Equal(testNow) {
		t.Errorf("handout approval = %+v", c.HandoutApproval)
	}
	if want := testNow.Add(7 * 24 * time.Hour); c.DueDate == nil || !c.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", c.DueDate, want)
	}

	if _, err := l.ApproveHandout(c.ID, f.librarian.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("second handout: %v", err)
	}
	if _, err := l.ReportReturn(c.ID, f.stranger.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger reporting a return: %v", err)
	}

	c, err = l.ReportReturn(c.ID, f.renter.ID)
	if err != nil {
		t.Fatalf("ReportReturn: %v", err)
	}
	if c.Status != types.ReturnVerifyNeeded || c.HandoutApproval == nil || c.HandoutApproval.Approver != f.librarian.ID {
		t.Errorf("after report = %+v", c)
	}

	if _, err := l.ApproveReturn(c.ID, f.renter.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("renter verifying own return: %v", err)
	}

	c, err = l.ApproveReturn(c.ID, f.librarian.ID)
	if err != nil {
		t.Fatalf("ApproveReturn: %v", err)
	}
	if c.Status != types.Done || c.ReturnApproval == nil || c.ReturnApproval.Approver != f.librarian.ID {
		t.Errorf("after verify = %+v", c)
	}

	for _, step := range []func(types.CheckoutID, types.UserID) (types.Checkout, error){
		l.ApproveHandout, l.ReportReturn, l.ApproveReturn,
	} {
		if _, err := step(c.ID, f.librarian.ID); !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("transition out of done: %v", err)
		}
	}
}

func TestCheckoutNotFound(t *testing.T) {
	f := newLifecycleFixture(t)
	missing := types.CheckoutID(f.lib.NewBookID())

	if _, err := f.lib.ApproveHandout(missing, f.librarian.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ApproveHandout(missing): %v", err)
	}
	if _, err := f.lib.RequestCheckout(f.renter.ID, types.BookID(missing)); !errors.Is(err, ErrUnknownBook) {
		t.Errorf("RequestCheckout(missing book): %v", err)
	}
	if _, err := f.lib.RequestCheckout(types.UserID(f.book.ID), f.book.ID); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("RequestCheckout(book as renter): %v", err)
	}
}

func TestCheckoutAvailability(t *testing.T) {
	f := newLifecycleFixture(t)
	l := f.lib

	first, err := l.RequestCheckout(f.renter.ID, f.book.ID)
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.RequestCheckout(f.stranger.ID, f.book.ID)
	var merr *ManipulationError
	if !errors.As(err, &merr) || merr.Kind != ErrUnavailable || merr.Input != f.book.Title {
		t.Fatalf("second request of a single copy: %v", err)
	}

	if _, err := l.SetQuantity(f.book.ID.String(), 2); err != nil {
		t.Fatal(err)
	}
	if _, err := l.RequestCheckout(f.stranger.ID, f.book.ID); err != nil {
		t.Fatalf("request after adding a copy: %v", err)
	}

	got := slices.Collect(l.CheckoutsFor(f.renter.ID))
	if len(got) != 1 || got[0].ID != first.ID {
		t.Errorf("CheckoutsFor(renter) = %+v", got)
	}
	if n := len(slices.Collect(l.Outstanding())); n != 2 {
		t.Errorf("Outstanding = %d, want 2", n)
	}
}

func TestOverdue(t *testing.T) {
	now := testNow
	f := newLifecycleFixture(t, WithClock(func() time.Time { return now }), WithLoanPeriod(48*time.Hour))
	l := f.lib

	c, _ := l.RequestCheckout(f.renter.ID, f.book.ID)
	if _, err := l.ApproveHandout(c.ID, f.librarian.ID); err != nil {
		t.Fatal(err)
	}

	if n := len(slices.Collect(l.Overdue(now.Add(47 * time.Hour)))); n != 0 {
		t.Errorf("overdue before due date: %d", n)
	}
	late := slices.Collect(l.Overdue(now.Add(49 * time.Hour)))
	if len(late) != 1 || late[0].ID != c.ID {
		t.Errorf("overdue after due date: %+v", late)
	}

	if _, err := l.ReportReturn(c.ID, f.renter.ID); err != nil {
		t.Fatal(err)
	}
	if n := len(slices.Collect(l.Overdue(now.Add(49 * time.Hour)))); n != 0 {
		t.Errorf("returned checkout still overdue: %d", n)
	}
}
