package view_test

import (
	"testing"

	"shelfarr/internal/domain"
	"shelfarr/internal/view"
)

func idx(v float64) *float64 { return &v }

func titles(entries []*domain.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func assertOrder(t *testing.T, got []*domain.CatalogEntry, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("got %v, want %v", titles(got), want)
		}
	}
}

func TestSortTitleCaseInsensitive(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "B"},
		{Title: "a"},
		{Title: "C"},
	}

	assertOrder(t, view.Sort(entries, view.SortTitle, view.SortAsc), []string{"a", "B", "C"})
	assertOrder(t, view.Sort(entries, view.SortTitle, view.SortDesc), []string{"C", "B", "a"})
}

func TestSortRatingUnratedLowest(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "mid", Rating: 3.5},
		{Title: "unrated"},
		{Title: "high", Rating: 4.8},
	}

	assertOrder(t, view.Sort(entries, view.SortRating, view.SortAsc), []string{"unrated", "mid", "high"})
	assertOrder(t, view.Sort(entries, view.SortRating, view.SortDesc), []string{"high", "mid", "unrated"})
}

func TestSortReleaseYearMissingLowest(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "new", ReleaseYear: 2021},
		{Title: "undated"},
		{Title: "old", ReleaseYear: 1965},
	}

	assertOrder(t, view.Sort(entries, view.SortReleaseYear, view.SortAsc), []string{"undated", "old", "new"})
	assertOrder(t, view.Sort(entries, view.SortReleaseYear, view.SortDesc), []string{"new", "old", "undated"})
}

// Missing series positions sort last in both directions.
func TestSortSeriesIndexMissingLast(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "loose"},
		{Title: "second", SeriesIndex: idx(2)},
		{Title: "first", SeriesIndex: idx(1)},
	}

	assertOrder(t, view.Sort(entries, view.SortSeriesIndex, view.SortAsc), []string{"first", "second", "loose"})
	assertOrder(t, view.Sort(entries, view.SortSeriesIndex, view.SortDesc), []string{"second", "first", "loose"})
}

// Equal keys keep their input order regardless of direction.
func TestSortStability(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "B", Rating: 0},
		{Title: "A", Rating: 0},
		{Title: "D", Rating: 0},
		{Title: "C", Rating: 0},
	}

	for _, order := range []view.SortOrder{view.SortAsc, view.SortDesc} {
		got := view.Sort(entries, view.SortRating, order)
		assertOrder(t, got, []string{"B", "A", "D", "C"})
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	entries := []*domain.CatalogEntry{
		{Title: "B"},
		{Title: "A"},
	}

	got := view.Sort(entries, view.SortTitle, view.SortAsc)

	assertOrder(t, got, []string{"A", "B"})
	assertOrder(t, entries, []string{"B", "A"})
}

func TestSortOrderToggle(t *testing.T) {
	if view.SortAsc.Toggle() != view.SortDesc {
		t.Fatal("asc should toggle to desc")
	}
	if view.SortDesc.Toggle() != view.SortAsc {
		t.Fatal("desc should toggle to asc")
	}
}
