package lendstore

import (
	"log/slog"
	"time"

	"github.com/arthur-debert/lendstore/lendstore/ids"
)

// DefaultLoanPeriod is how long a reader keeps a book after handout.
const DefaultLoanPeriod = 7 * 24 * time.Hour

// Option configures a Library
type Option func(*Library)

// WithClock sets the time source used for request, approval and due dates.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// WithIDSource replaces the random source identifiers are minted from.
func WithIDSource(source ids.Source) Option {
	return func(l *Library) {
		l.gen = ids.NewGenerator(source)
	}
}

// WithLoanPeriod sets the time between handout and due date.
func WithLoanPeriod(d time.Duration) Option {
	return func(l *Library) {
		if d > 0 {
			l.loanPeriod = d
		}
	}
}

// WithAuthorizer decides who may approve handouts and returns.
func WithAuthorizer(a Authorizer) Option {
	return func(l *Library) {
		l.auth = a
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}
