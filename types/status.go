package types

import "fmt"

// Status is a checkout's position in its lifecycle. Values only ever move forward by one.
type Status uint8

const (
	// PreTransact: requested, nothing has changed hands yet.
	PreTransact Status = iota
	// Reading: an approver confirmed the handout, the loan clock is running.
	Reading
	// ReturnVerifyNeeded: the renter reports the book is back.
	ReturnVerifyNeeded
	// Done: an approver confirmed the return. Terminal.
	Done
)

var statusNames = [...]string{
	PreTransact:        "pre-transact",
	Reading:            "reading",
	ReturnVerifyNeeded: "return-verify-needed",
	Done:               "done",
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool { return int(s) < len(statusNames) }

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusNames[s]
}

// Next returns the state that follows s, and false for Done.
func (s Status) Next() (Status, bool) {
	if !s.Valid() || s == Done {
		return s, false
	}
	return s + 1, true
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(text string) (Status, error) {
	for i, name := range statusNames {
		if name == text {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown checkout status %q", text)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid checkout status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
