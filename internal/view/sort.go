package view

import (
	"cmp"
	"slices"
	"strings"

	"shelfarr/internal/domain"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortTitle       SortField = "title"
	SortRating      SortField = "rating"
	SortReleaseYear SortField = "releaseYear"
	SortSeriesIndex SortField = "seriesIndex"
)

// String returns the display name for the sort field.
func (f SortField) String() string {
	switch f {
	case SortTitle:
		return "Title"
	case SortRating:
		return "Rating"
	case SortReleaseYear:
		return "Release Year"
	case SortSeriesIndex:
		return "Series Position"
	default:
		return "Unknown"
	}
}

// SortOptions returns the recognized sort fields in cycle order.
func SortOptions() []SortField {
	return []SortField{SortTitle, SortRating, SortReleaseYear, SortSeriesIndex}
}

// SortOrder represents sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle returns the opposite direction.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Sort returns a new slice ordered by the given field and direction.
// The sort is stable: entries comparing equal keep their input order.
// Entries without a series position always sort last under SortSeriesIndex,
// in both directions; for every other field the direction inverts the whole
// comparison (rating 0 and year 0 are simply the lowest values).
func Sort(entries []*domain.CatalogEntry, field SortField, order SortOrder) []*domain.CatalogEntry {
	out := slices.Clone(entries)

	dir := 1
	if order == SortDesc {
		dir = -1
	}

	slices.SortStableFunc(out, func(a, b *domain.CatalogEntry) int {
		switch field {
		case SortRating:
			return dir * cmp.Compare(a.Rating, b.Rating)
		case SortReleaseYear:
			return dir * cmp.Compare(a.ReleaseYear, b.ReleaseYear)
		case SortSeriesIndex:
			return compareSeriesIndex(a.SeriesIndex, b.SeriesIndex, dir)
		default: // SortTitle
			return dir * cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	})

	return out
}

// compareSeriesIndex orders by series position with missing positions last
// regardless of direction. The placement rule is a fixed tie-break, not part
// of the invertible comparison.
func compareSeriesIndex(a, b *float64, dir int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return dir * cmp.Compare(*a, *b)
}
