// Package view derives what a page displays from a raw catalog entry list.
// Everything here is pure: data in, data out, no cache or network access.
package view

import "shelfarr/internal/domain"

// FilterStatus selects which entries survive filtering.
type FilterStatus string

const (
	FilterAll        FilterStatus = "all"
	FilterInLibrary  FilterStatus = "inLibrary"
	FilterMissing    FilterStatus = "missing"
	FilterDownloaded FilterStatus = "downloaded"
)

// String returns the display name for the filter.
func (f FilterStatus) String() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterInLibrary:
		return "In Library"
	case FilterMissing:
		return "Missing"
	case FilterDownloaded:
		return "Downloaded"
	default:
		return "Unknown"
	}
}

// FilterOptions returns the recognized filters in cycle order.
func FilterOptions() []FilterStatus {
	return []FilterStatus{FilterAll, FilterInLibrary, FilterMissing, FilterDownloaded}
}

// Filter returns the entries passing the given status filter, preserving
// relative order. When hideCompilations is set, compilation entries are
// dropped regardless of the status filter. The input is never mutated.
func Filter(entries []*domain.CatalogEntry, status FilterStatus, hideCompilations bool) []*domain.CatalogEntry {
	out := make([]*domain.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if hideCompilations && e.Compilation {
			continue
		}
		if matchesFilter(e, status) {
			out = append(out, e)
		}
	}
	return out
}

func matchesFilter(e *domain.CatalogEntry, status FilterStatus) bool {
	switch status {
	case FilterInLibrary:
		return e.InLibrary()
	case FilterMissing:
		// Not owned at all, or owned without a file on disk.
		return !e.InLibrary() || e.LibraryBook.Status != domain.StatusDownloaded
	case FilterDownloaded:
		return e.Downloaded()
	default: // FilterAll and anything unrecognized passes everything
		return true
	}
}
