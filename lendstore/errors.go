package lendstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/lendstore/types"
)

var (
	ErrAlreadyAdded         = errors.New("already added")
	ErrUnknownBook          = errors.New("unknown book")
	ErrUnknownUser          = errors.New("unknown user")
	ErrNotFound             = errors.New("checkout not found")
	ErrOutstandingCheckouts = errors.New("checkouts not returned")
	ErrUnavailable          = errors.New("no copies available")
	ErrInvalidInput         = errors.New("invalid input")

	ErrIllegalTransition = errors.New("illegal checkout transition")
	ErrUnauthorized      = errors.New("not authorized")
)

// ManipulationError reports why a book, user or checkout could not be changed.
// Kind is one of the Err* sentinels above and is matched by errors.Is.
type ManipulationError struct {
	Kind  error
	Input string
	// Checkouts lists the blocking checkouts for ErrOutstandingCheckouts, in store order.
	Checkouts []types.CheckoutID
	Err       error
}

func (e *ManipulationError) Error() string {
	switch e.Kind {
	case ErrAlreadyAdded:
		return fmt.Sprintf("%q was already added; use set-quantity to change the number of copies", e.Input)
	case ErrUnknownBook:
		return fmt.Sprintf("no book matches %q", e.Input)
	case ErrUnknownUser:
		return fmt.Sprintf("no user matches %q", e.Input)
	case ErrNotFound:
		return fmt.Sprintf("no checkout matches %q", e.Input)
	case ErrOutstandingCheckouts:
		list := make([]string, len(e.Checkouts))
		for i, id := range e.Checkouts {
			list[i] = id.String()
		}
		return fmt.Sprintf("book %q has checkouts that were not returned: %s", e.Input, strings.Join(list, ", "))
	case ErrUnavailable:
		return fmt.Sprintf("every copy of %q is checked out", e.Input)
	case ErrInvalidInput:
		if e.Err != nil {
			return e.Err.Error()
		}
		return fmt.Sprintf("invalid input %q", e.Input)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.Input)
}

func (e *ManipulationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// TransitionError is returned when a checkout cannot move to its next state,
// either because it is in the wrong state or because the actor may not move it.
type TransitionError struct {
	Checkout     types.CheckoutID
	Action       string
	Status       types.Status
	Actor        types.UserID
	Unauthorized bool
}

func (e *TransitionError) Error() string {
	if e.Unauthorized {
		return fmt.Sprintf("user %s may not %s checkout %s", e.Actor, e.Action, e.Checkout)
	}
	return fmt.Sprintf("cannot %s checkout %s: it is %s", e.Action, e.Checkout, e.Status)
}

// Unwrap matches ErrIllegalTransition, plus ErrUnauthorized when the actor was refused.
func (e *TransitionError) Unwrap() []error {
	if e.Unauthorized {
		return []error{ErrIllegalTransition, ErrUnauthorized}
	}
	return []error{ErrIllegalTransition}
}

func alreadyAdded(input string) error {
	return &ManipulationError{Kind: ErrAlreadyAdded, Input: input}
}

func unknownBook(input string) error {
	return &ManipulationError{Kind: ErrUnknownBook, Input: input}
}

func unknownUser(input string) error {
	return &ManipulationError{Kind: ErrUnknownUser, Input: input}
}

func invalidInput(input string, err error) error {
	return &ManipulationError{Kind: ErrInvalidInput, Input: input, Err: err}
}
