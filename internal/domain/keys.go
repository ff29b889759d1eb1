package domain

import "strings"

// ContextKey names one cached collection context, e.g. "author:42",
// "series:7" or "search:dune". The same foreign id may appear in several
// contexts at once; all of them must stay consistent after a mutation.
type ContextKey string

// Context kinds.
const (
	KindAuthor = "author"
	KindSeries = "series"
	KindSearch = "search"
)

// AuthorContext returns the context key for an author's bibliography.
func AuthorContext(authorID string) ContextKey {
	return ContextKey(KindAuthor + ":" + authorID)
}

// SeriesContext returns the context key for a series' book list.
func SeriesContext(seriesID string) ContextKey {
	return ContextKey(KindSeries + ":" + seriesID)
}

// SearchContext returns the context key for a search result set.
// Queries are normalized so "Dune " and "dune" share one context.
func SearchContext(query string) ContextKey {
	return ContextKey(KindSearch + ":" + strings.ToLower(strings.TrimSpace(query)))
}

// Kind returns the context kind ("author", "series", "search").
func (k ContextKey) Kind() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k)[:i]
	}
	return string(k)
}

// ID returns the identifier portion of the key (author id, series id or
// search query).
func (k ContextKey) ID() string {
	if i := strings.IndexByte(string(k), ':'); i >= 0 {
		return string(k)[i+1:]
	}
	return ""
}
