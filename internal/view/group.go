package view

import (
	"slices"
	"sort"

	"shelfarr/internal/domain"
)

// SeriesGroup is one series bucket produced by grouping.
type SeriesGroup struct {
	ID    string
	Name  string
	Books []*domain.CatalogEntry
}

// GroupBySeries buckets entries by series id. Entries missing either the
// series id or the series name are excluded entirely (there is no "unnamed"
// bucket). Groups are ordered by case-sensitive byte comparison of the name,
// not locale collation; books within a group are ordered by series position
// ascending, treating a missing position as 0.
//
// Note the missing-position handling deliberately differs from Sort, which
// places missing positions last. Both behaviors are preserved as observed.
func GroupBySeries(entries []*domain.CatalogEntry) []SeriesGroup {
	byID := make(map[string]int)
	var groups []SeriesGroup

	for _, e := range entries {
		if !e.HasSeries() {
			continue
		}
		i, ok := byID[e.SeriesID]
		if !ok {
			i = len(groups)
			byID[e.SeriesID] = i
			groups = append(groups, SeriesGroup{ID: e.SeriesID, Name: e.SeriesName})
		}
		groups[i].Books = append(groups[i].Books, e)
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Books, func(a, b *domain.CatalogEntry) int {
			ai, bi := indexOrZero(a.SeriesIndex), indexOrZero(b.SeriesIndex)
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})

	return groups
}

// AuthorSeriesGroups is the grouping variant used for an author's own
// bibliography: a lone book sharing a series id with no siblings is not
// shown as a series.
func AuthorSeriesGroups(entries []*domain.CatalogEntry) []SeriesGroup {
	groups := GroupBySeries(entries)
	out := groups[:0]
	for _, g := range groups {
		if len(g.Books) >= 2 {
			out = append(out, g)
		}
	}
	return out
}

func indexOrZero(idx *float64) float64 {
	if idx == nil {
		return 0
	}
	return *idx
}
