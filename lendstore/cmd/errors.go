package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/lendstore/lendstore"
	"github.com/arthur-debert/lendstore/lendstore/ids"
	"github.com/arthur-debert/lendstore/lendstore/store"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "add book", "hand out")
	Cause       string   // The underlying cause (e.g., "no book matches")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}
	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}
	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewUsageError creates an error for malformed arguments
func NewUsageError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       issue,
		Suggestions: append(suggestions, CommonSuggestions.RunHelp),
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewStoreError turns a library error into one line the user can act on. Persistence
// faults are kept generic for the user; the detail goes to the log.
func NewStoreError(operation string, underlying error, suggestions ...string) *CLIError {
	e := &CLIError{
		Operation:   operation,
		Cause:       underlying.Error(),
		Suggestions: suggestions,
		Underlying:  underlying,
	}

	var mismatch *ids.MismatchError
	switch {
	case errors.Is(underlying, store.ErrCorruptSnapshot):
		e.Cause = "the library file is damaged"
		e.Details = underlying.Error()
		e.Suggestions = append(e.Suggestions, "Restore a dump with 'lendstore restore <file>' or move the file aside")
	case errors.Is(underlying, store.ErrPersistence):
		e.Cause = "the library could not be written to disk"
		e.Suggestions = append(e.Suggestions, CommonSuggestions.CheckPerms, CommonSuggestions.CheckLog)
	case errors.As(underlying, &mismatch):
		e.Suggestions = append(e.Suggestions, fmt.Sprintf("Use a %s id here", mismatch.Want))
	case errors.Is(underlying, ids.ErrInvalidEncoding):
		e.Cause = "that is not a valid id"
		e.Details = underlying.Error()
		e.Suggestions = append(e.Suggestions, "Ids are 7 characters of A-Z and 2-7")
	case errors.Is(underlying, ids.ErrNotFound), errors.Is(underlying, lendstore.ErrNotFound):
		e.Suggestions = append(e.Suggestions, "Run 'lendstore checkout list' to see checkout ids")
	case errors.Is(underlying, lendstore.ErrUnknownBook):
		e.Suggestions = append(e.Suggestions, CommonSuggestions.ListBooks)
	case errors.Is(underlying, lendstore.ErrUnknownUser):
		e.Suggestions = append(e.Suggestions, "Run 'lendstore user list' to see members")
	case errors.Is(underlying, lendstore.ErrUnauthorized):
		e.Suggestions = append(e.Suggestions, "Ask an approver (see --approver) to do this")
	case errors.Is(underlying, lendstore.ErrIllegalTransition):
		e.Suggestions = append(e.Suggestions, "Run 'lendstore checkout list' to see where each checkout stands")
	}
	return e
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}
	return NewStoreError(operation, err, suggestions...)
}

// CommonSuggestions holds suggestion lines shared by several errors
var CommonSuggestions = struct {
	CheckDB    string
	CheckAs    string
	CheckPerms string
	CheckLog   string
	ListBooks  string
	RunHelp    string
}{
	CheckDB:    "Verify --db points to the library file",
	CheckAs:    "Pass --as <chat-id> or set LENDSTORE_AS",
	CheckPerms: "Check file permissions and directory access",
	CheckLog:   "See lendstore.log in the cache directory for details",
	ListBooks:  "Run 'lendstore book list' to see titles and ids",
	RunHelp:    "Run command with --help for usage information",
}
