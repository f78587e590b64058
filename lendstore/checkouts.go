package lendstore

import (
	"time"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/types"
)

// RequestCheckout records that renter wants a copy of book. The checkout starts in
// PreTransact and waits for an approver to hand the copy over.
func (l *Library) RequestCheckout(renter types.UserID, book types.BookID) (types.Checkout, error) {
	return storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.Checkout, error) {
		if _, ok := l.users.Get(renter); !ok {
			return types.Checkout{}, unknownUser(renter.String())
		}
		b, ok := l.books.Get(book)
		if !ok {
			return types.Checkout{}, unknownBook(book.String())
		}

		var outstanding uint32
		for pair := l.checkouts.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Book == book && pair.Value.Outstanding() {
				outstanding++
			}
		}
		if outstanding >= b.Quantity {
			return types.Checkout{}, &ManipulationError{Kind: ErrUnavailable, Input: b.Title}
		}

		c := types.Checkout{
			ID:          types.CheckoutID(l.mintLocked()),
			Renter:      renter,
			Book:        book,
			Status:      types.PreTransact,
			RequestedAt: l.now(),
		}
		l.checkouts.Set(c.ID, c)
		l.logger.Info("checkout requested", "id", c.ID, "renter", renter, "book", book)
		return c, nil
	})
}

// Checkout returns the checkout with the given identifier.
func (l *Library) Checkout(id types.CheckoutID) (types.Checkout, bool) {
	var (
		c  types.Checkout
		ok bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		c, ok = l.checkouts.Get(id)
		return nil
	})
	return c, ok
}

// ApproveHandout confirms that approver gave the copy to the renter. The due date is set
// one loan period from now.
func (l *Library) ApproveHandout(id types.CheckoutID, approver types.UserID) (types.Checkout, error) {
	return l.transition(id, approver, "hand out", types.PreTransact, l.approverOnly,
		func(c *types.Checkout, now time.Time) {
			due := now.Add(l.loanPeriod)
			c.HandoutApproval = &types.Approval{Approver: approver, At: now}
			c.DueDate = &due
		})
}

// ReportReturn marks the copy as brought back. Either the renter or an approver may
// report it; an approver still has to verify it with ApproveReturn.
func (l *Library) ReportReturn(id types.CheckoutID, actor types.UserID) (types.Checkout, error) {
	return l.transition(id, actor, "report the return of", types.Reading, l.renterOrApprover, nil)
}

// ApproveReturn confirms the copy is back on the shelf and closes the checkout.
func (l *Library) ApproveReturn(id types.CheckoutID, approver types.UserID) (types.Checkout, error) {
	return l.transition(id, approver, "verify the return of", types.ReturnVerifyNeeded, l.approverOnly,
		func(c *types.Checkout, now time.Time) {
			c.ReturnApproval = &types.Approval{Approver: approver, At: now}
		})
}

type permission func(actor types.User, c types.Checkout) bool

func (l *Library) approverOnly(actor types.User, c types.Checkout) bool {
	return actor.ID != c.Renter && l.auth.CanApprove(actor)
}

func (l *Library) renterOrApprover(actor types.User, c types.Checkout) bool {
	return actor.ID == c.Renter || l.auth.CanApprove(actor)
}

// transition moves a checkout from one state to the next. Nothing changes unless the
// checkout is in from and allowed accepts the actor.
func (l *Library) transition(
	id types.CheckoutID,
	actorID types.UserID,
	action string,
	from types.Status,
	allowed permission,
	apply func(c *types.Checkout, now time.Time),
) (types.Checkout, error) {
	return storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.Checkout, error) {
		c, ok := l.checkouts.Get(id)
		if !ok {
			return types.Checkout{}, &ManipulationError{Kind: ErrNotFound, Input: id.String()}
		}
		if c.Status != from {
			return types.Checkout{}, &TransitionError{Checkout: id, Action: action, Status: c.Status, Actor: actorID}
		}

		actor, ok := l.users.Get(actorID)
		if !ok || !allowed(actor, c) {
			l.logger.Warn("checkout transition refused", "id", id, "actor", actorID, "action", action)
			return types.Checkout{}, &TransitionError{Checkout: id, Action: action, Status: c.Status, Actor: actorID, Unauthorized: true}
		}

		next, _ := c.Status.Next()
		if apply != nil {
			apply(&c, l.now())
		}
		c.Status = next

		l.checkouts.Set(id, c)
		l.logger.Info("checkout advanced", "id", id, "status", c.Status, "actor", actorID)
		return c, nil
	})
}
