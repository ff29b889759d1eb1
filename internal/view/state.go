package view

import "shelfarr/internal/domain"

// ViewMode selects the rendering layout; the engine only carries it.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// State is the per-page sort/filter record the engine derives from.
type State struct {
	FilterStatus     FilterStatus
	SortField        SortField
	SortOrder        SortOrder
	HideCompilations bool
	ViewMode         ViewMode
}

// DefaultState returns the initial view state for a page. Pages that are
// inherently series-ordered default to sorting by series position; everything
// else defaults to title.
func DefaultState(seriesContext bool) State {
	field := SortTitle
	if seriesContext {
		field = SortSeriesIndex
	}
	return State{
		FilterStatus:     FilterAll,
		SortField:        field,
		SortOrder:        SortAsc,
		HideCompilations: false,
		ViewMode:         ViewGrid,
	}
}

// View is the engine's output: an ordered sequence plus derived counts for
// toolbar display. It makes no assumptions about rendering.
type View struct {
	Entries       []*domain.CatalogEntry
	TotalCount    int
	FilteredCount int
}

// Derive applies the state's filter and sort to a raw entry list.
func Derive(entries []*domain.CatalogEntry, state State) View {
	filtered := Filter(entries, state.FilterStatus, state.HideCompilations)
	sorted := Sort(filtered, state.SortField, state.SortOrder)
	return View{
		Entries:       sorted,
		TotalCount:    len(entries),
		FilteredCount: len(sorted),
	}
}
