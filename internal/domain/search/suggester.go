package search

import (
	"context"
	"strings"
)

// SuggestContext is the catalog context handed to a Suggester
type SuggestContext struct {
	Categories   []string
	ProductNames []string
}

// Suggestion is a Suggester's answer for one query
type Suggestion struct {
	CorrectedQuery string   `json:"correctedQuery"`
	Suggestions    []string `json:"suggestions"`
}

// Suggester proposes a spelling correction and related terms for a query.
// Callers treat any error, and a nil result, as "no suggestion".
type Suggester interface {
	Suggest(ctx context.Context, query string, sc SuggestContext) (*Suggestion, error)
}

// NoopSuggester never suggests anything
type NoopSuggester struct{}

// Suggest implements Suggester
func (NoopSuggester) Suggest(context.Context, string, SuggestContext) (*Suggestion, error) {
	return nil, nil
}

// Resolution is the query a search is ranked with after consulting a Suggester
type Resolution struct {
	// Query is the query used for ranking
	Query string
	// Corrected is set only when the suggester changed the query
	Corrected *string
	// Suggestions is never nil
	Suggestions []string
}

// Resolve applies a suggestion to the original query. A nil suggestion, an
// empty correction or one equal to the original (ignoring case and
// surrounding space) leaves the query unchanged.
func Resolve(original string, s *Suggestion, maxSuggestions int) Resolution {
	res := Resolution{
		Query:       strings.TrimSpace(original),
		Suggestions: []string{},
	}
	if s == nil {
		return res
	}

	corrected := strings.TrimSpace(s.CorrectedQuery)
	if corrected != "" && Normalize(corrected) != Normalize(original) {
		res.Query = corrected
		res.Corrected = &corrected
	}

	for _, term := range s.Suggestions {
		if len(res.Suggestions) >= maxSuggestions {
			break
		}
		if term = strings.TrimSpace(term); term != "" {
			res.Suggestions = append(res.Suggestions, term)
		}
	}
	return res
}
