package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"shelfarr/internal/domain"
)

// applyListFilter narrows entries to fuzzy title matches, best match first.
// An empty query is the identity.
func applyListFilter(entries []*domain.CatalogEntry, query string) []*domain.CatalogEntry {
	if query == "" {
		return entries
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = strings.ToLower(e.Title)
	}

	matches := fuzzy.Find(strings.ToLower(query), titles)
	out := make([]*domain.CatalogEntry, len(matches))
	for i, match := range matches {
		out[i] = entries[match.Index]
	}
	return out
}
