package types

import (
	"time"

	"github.com/arthur-debert/lendstore/lendstore/ids"
)

// BookID, UserID and CheckoutID share the ids.ID value space but are distinct types so a
// user id can never be passed where a book id is expected.
type (
	BookID     ids.ID
	UserID     ids.ID
	CheckoutID ids.ID
)

func (id BookID) String() string     { return ids.ID(id).String() }
func (id UserID) String() string     { return ids.ID(id).String() }
func (id CheckoutID) String() string { return ids.ID(id).String() }

func (id BookID) MarshalText() ([]byte, error)     { return ids.ID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)     { return ids.ID(id).MarshalText() }
func (id CheckoutID) MarshalText() ([]byte, error) { return ids.ID(id).MarshalText() }

func (id *BookID) UnmarshalText(text []byte) error     { return (*ids.ID)(id).UnmarshalText(text) }
func (id *UserID) UnmarshalText(text []byte) error     { return (*ids.ID)(id).UnmarshalText(text) }
func (id *CheckoutID) UnmarshalText(text []byte) error { return (*ids.ID)(id).UnmarshalText(text) }

// Book is a title the library owns one or more physical copies of.
type Book struct {
	ID       BookID `json:"id" yaml:"id" msgpack:"id"`
	Title    string `json:"title" yaml:"title" msgpack:"title"`
	Author   string `json:"author" yaml:"author" msgpack:"author"`
	Quantity uint32 `json:"quantity" yaml:"quantity" msgpack:"quantity"` // Physical copies, at least 1
}

// User is a library member, keyed by their chat-platform identity.
type User struct {
	ID          UserID `json:"id" yaml:"id" msgpack:"id"`
	ChatID      string `json:"chat_id" yaml:"chat_id" msgpack:"chat_id"` // Chat-platform identity, unique
	DisplayName string `json:"display_name" yaml:"display_name" msgpack:"display_name"`
}

// Approval records which approver confirmed a physical handover and when.
type Approval struct {
	Approver UserID    `json:"approver" yaml:"approver" msgpack:"approver"`
	At       time.Time `json:"at" yaml:"at" msgpack:"at"`
}

// Checkout is one loan of one book to one renter.
type Checkout struct {
	ID              CheckoutID `json:"id" yaml:"id" msgpack:"id"`
	Renter          UserID     `json:"renter" yaml:"renter" msgpack:"renter"`
	Book            BookID     `json:"book" yaml:"book" msgpack:"book"`
	Status          Status     `json:"status" yaml:"status" msgpack:"status"`
	RequestedAt     time.Time  `json:"requested_at" yaml:"requested_at" msgpack:"requested_at"`
	DueDate         *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty" msgpack:"due_date"`                 // Set at handout
	HandoutApproval *Approval  `json:"handout_approval,omitempty" yaml:"handout_approval,omitempty" msgpack:"handout_approval"` // Set at handout
	ReturnApproval  *Approval  `json:"return_approval,omitempty" yaml:"return_approval,omitempty" msgpack:"return_approval"`    // Set when the return is verified
}

// Outstanding reports whether the checkout still counts against its book.
func (c Checkout) Outstanding() bool { return c.Status != Done }

// Overdue reports whether a book in the renter's hands is past its due date.
func (c Checkout) Overdue(now time.Time) bool {
	return c.Status == Reading && c.DueDate != nil && now.After(*c.DueDate)
}
