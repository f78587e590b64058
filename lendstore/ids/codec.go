package ids

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ID is a 32-bit identifier shared by books, users and checkouts.
type ID uint32

// MinID is the smallest value Mint will hand out. Anything lower would encode with a
// leading "A" and is regenerated instead.
const MinID ID = 1 << 27

// EncodedLen is the length of every encoded identifier.
const EncodedLen = 7

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

var (
	// ErrInvalidEncoding is returned when text is not the canonical encoding of four bytes.
	ErrInvalidEncoding = errors.New("invalid identifier encoding")

	// ErrNotFound is returned when text decodes but no record holds the identifier.
	ErrNotFound = errors.New("identifier not found")

	// ErrMismatch is matched by MismatchError.
	ErrMismatch = errors.New("identifier names a different kind of record")
)

// ResolutionError reports which input failed to resolve and why.
type ResolutionError struct {
	Input        string
	WrappedError error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve ID %q: %v", e.Input, e.WrappedError)
}

// Unwrap allows error unwrapping
func (e *ResolutionError) Unwrap() error {
	return e.WrappedError
}

// MismatchError is returned by Expect when the identifier is live but belongs to another
// class than the one asked for.
type MismatchError struct {
	Input string
	Want  Class
	Got   Class
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s is a %s id, not a %s id", e.Input, e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// String returns the encoded form of the identifier.
func (id ID) String() string { return Encode(id) }

// Encode renders id as seven characters of unpadded base-32 over its big-endian bytes.
func Encode(id ID) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(id))
	return encoding.EncodeToString(buf[:])
}

// Parse decodes text into an identifier without consulting any store. Lower-case input is
// accepted. Only the canonical encoding is valid: seven characters whose unused trailing
// bits are zero.
func Parse(text string) (ID, error) {
	upper := strings.ToUpper(text)
	if len(upper) != EncodedLen {
		return 0, &ResolutionError{Input: text, WrappedError: ErrInvalidEncoding}
	}

	var buf [4]byte
	n, err := encoding.Decode(buf[:], []byte(upper))
	if err != nil || n != len(buf) {
		return 0, &ResolutionError{Input: text, WrappedError: ErrInvalidEncoding}
	}

	id := ID(binary.BigEndian.Uint32(buf[:]))
	if Encode(id) != upper {
		return 0, &ResolutionError{Input: text, WrappedError: ErrInvalidEncoding}
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(Encode(id)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
