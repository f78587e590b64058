// Package search ranks catalogue books against a free-text query.
package search

import (
	"iter"

	"github.com/arthur-debert/lendstore/types"
)

// Field names a searchable book field.
type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
)

// ParseField accepts "title" or "author".
func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldTitle, FieldAuthor:
		return f, true
	}
	return "", false
}

// Options configures search behavior
type Options struct {
	// Query is the text to look for. An empty query matches nothing.
	Query string

	// Fields restricts the search. Empty searches title and author.
	Fields []Field

	// CaseSensitive controls whether search is case-sensitive
	CaseSensitive bool

	// ExactMatch requires the entire field to match the query
	// When false, performs substring matching
	ExactMatch bool

	// Highlight wraps each match in HighlightStart and HighlightEnd ("**" when empty).
	Highlight      bool
	HighlightStart string
	HighlightEnd   string

	// MaxResults limits the number of results; 0 means no limit.
	MaxResults int
}

// Result is one matching book.
type Result struct {
	Book types.Book `json:"book" yaml:"book"`

	// Score is the match relevance from 0 to 1, higher is better.
	Score float64 `json:"score" yaml:"score"`

	// MatchType describes the best match found.
	MatchType MatchType `json:"match_type" yaml:"match_type"`

	// MatchedFields lists every field that matched, in search order.
	MatchedFields []Field `json:"matched_fields" yaml:"matched_fields"`

	// Highlights holds each matched field with markers around the matches.
	Highlights map[Field]string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// MatchType indicates the type of match found
type MatchType string

const (
	MatchExactTitle    MatchType = "exact_title"
	MatchPartialTitle  MatchType = "partial_title"
	MatchExactAuthor   MatchType = "exact_author"
	MatchPartialAuthor MatchType = "partial_author"
)

// Catalogue is the source of books to search. *lendstore.Library implements it.
type Catalogue interface {
	Books() iter.Seq[types.Book]
}
