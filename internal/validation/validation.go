package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/lendstore/lendstore/ids"
	"github.com/arthur-debert/lendstore/types"
)

// ErrInvalid is wrapped by every error this package returns.
var ErrInvalid = errors.New("invalid input")

const (
	maxTitleLength  = 256
	maxAuthorLength = 128
	maxChatIDLength = 128
)

// ValidateBook checks the fields a caller controls when adding or editing a book.
func ValidateBook(book types.Book) error {
	if err := validateText("title", book.Title, maxTitleLength); err != nil {
		return err
	}
	if err := validateText("author", book.Author, maxAuthorLength); err != nil {
		return err
	}
	if book.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalid, book.Quantity)
	}
	return nil
}

// ValidateUser checks a member record.
func ValidateUser(user types.User) error {
	if err := validateText("chat id", user.ChatID, maxChatIDLength); err != nil {
		return err
	}
	if strings.ContainsAny(user.ChatID, " \t\r\n") {
		return fmt.Errorf("%w: chat id %q must not contain whitespace", ErrInvalid, user.ChatID)
	}
	return nil
}

// ValidateID rejects identifiers the generator would never have minted.
func ValidateID(id ids.ID) error {
	if id < ids.MinID {
		return fmt.Errorf("%w: identifier %s is below the minimum", ErrInvalid, id)
	}
	return nil
}

// ValidateCheckout checks that a checkout's optional fields agree with its status.
func ValidateCheckout(c types.Checkout) error {
	if !c.Status.Valid() {
		return fmt.Errorf("%w: checkout %s has %s", ErrInvalid, c.ID, c.Status)
	}
	handedOut := c.Status >= types.Reading
	if handedOut != (c.HandoutApproval != nil) || handedOut != (c.DueDate != nil) {
		return fmt.Errorf("%w: checkout %s is %s but handout approval/due date disagree", ErrInvalid, c.ID, c.Status)
	}
	if (c.Status == types.Done) != (c.ReturnApproval != nil) {
		return fmt.Errorf("%w: checkout %s is %s but return approval disagrees", ErrInvalid, c.ID, c.Status)
	}
	return nil
}

func validateText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalid, field)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s is longer than %d bytes", ErrInvalid, field, maxLen)
	}
	return nil
}
