package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/arthur-debert/lendstore/types"
)

// Engine searches a catalogue.
type Engine struct {
	catalogue Catalogue
}

// NewEngine creates a search engine over the given catalogue
func NewEngine(catalogue Catalogue) *Engine {
	return &Engine{catalogue: catalogue}
}

// Search returns matching books, best first. Books with equal scores keep catalogue order.
func (e *Engine) Search(options Options) []Result {
	if options.Query == "" {
		return []Result{}
	}

	fields := options.Fields
	if len(fields) == 0 {
		fields = []Field{FieldTitle, FieldAuthor}
	}
	if options.HighlightStart == "" {
		options.HighlightStart = "**"
	}
	if options.HighlightEnd == "" {
		options.HighlightEnd = "**"
	}

	results := []Result{}
	for book := range e.catalogue.Books() {
		if result, ok := searchBook(book, fields, options); ok {
			results = append(results, result)
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if options.MaxResults > 0 && len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}
	return results
}

func searchBook(book types.Book, fields []Field, options Options) (Result, bool) {
	result := Result{Book: book}
	for _, field := range fields {
		text := fieldValue(book, field)
		score, exact, ok := match(text, field, options)
		if !ok {
			continue
		}
		result.MatchedFields = append(result.MatchedFields, field)
		if score > result.Score {
			result.Score = score
			result.MatchType = matchType(field, exact)
		}
		if options.Highlight {
			if result.Highlights == nil {
				result.Highlights = make(map[Field]string)
			}
			result.Highlights[field] = highlight(text, options)
		}
	}
	return result, len(result.MatchedFields) > 0
}

func fieldValue(book types.Book, field Field) string {
	if field == FieldAuthor {
		return book.Author
	}
	return book.Title
}

func matchType(field Field, exact bool) MatchType {
	switch {
	case field == FieldTitle && exact:
		return MatchExactTitle
	case field == FieldTitle:
		return MatchPartialTitle
	case exact:
		return MatchExactAuthor
	default:
		return MatchPartialAuthor
	}
}

func fold(text string, options Options) (string, string) {
	if options.CaseSensitive {
		return text, options.Query
	}
	return strings.ToLower(text), strings.ToLower(options.Query)
}

// match reports whether text matches the query and how well.
func match(text string, field Field, options Options) (score float64, exact, ok bool) {
	searchText, query := fold(text, options)
	if searchText == query {
		return 1.0, true, true
	}
	if options.ExactMatch || !strings.Contains(searchText, query) {
		return 0, false, false
	}
	return calculateScore(searchText, query, field), false, true
}

// calculateScore computes a relevance score for a substring match
func calculateScore(text, query string, field Field) float64 {
	score := 0.6
	if field == FieldTitle {
		score = 0.7
	}

	// Boost if match is at the beginning
	if strings.HasPrefix(text, query) {
		score += 0.1
	}

	// Boost if query takes up a large portion of the field
	if float64(len(query))/float64(len(text)) > 0.5 {
		score += 0.1
	}
	return min(score, 0.95)
}

// highlight wraps every non-overlapping match in the configured markers.
func highlight(text string, options Options) string {
	searchText, query := fold(text, options)
	if options.ExactMatch || searchText == query {
		return options.HighlightStart + text + options.HighlightEnd
	}
	// Case folding changed the byte length, so offsets in searchText do not map onto text.
	if len(searchText) != len(text) {
		return text
	}

	var b strings.Builder
	last := 0
	for {
		i := strings.Index(searchText[last:], query)
		if i < 0 {
			break
		}
		start := last + i
		end := start + len(query)
		b.WriteString(text[last:start])
		b.WriteString(options.HighlightStart)
		b.WriteString(text[start:end])
		b.WriteString(options.HighlightEnd)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}
