package domain

import "fmt"

// BookStatus describes the local file state of a library book.
type BookStatus string

const (
	StatusDownloaded  BookStatus = "downloaded"
	StatusDownloading BookStatus = "downloading"
	StatusMissing     BookStatus = "missing"
	StatusUnreleased  BookStatus = "unreleased"
	StatusUnknown     BookStatus = "unknown"
)

// LibraryBook is the locally owned record attached to a catalog entry
// once the user has added it to their library.
type LibraryBook struct {
	ID        int64      `json:"id"`        // Local library identity
	Status    BookStatus `json:"status"`    // File state
	Monitored bool       `json:"monitored"` // Whether the library watches for releases
}

// CatalogEntry is one external-catalog item as seen from a library-aware view.
// Entries are created when a collection context is fetched and are never
// written afterwards; a settling add/remove replaces the cached entry with
// a patched copy.
type CatalogEntry struct {
	ForeignID   string   `json:"foreignId"` // Stable identifier from the metadata provider
	Title       string   `json:"title"`
	AuthorName  string   `json:"authorName,omitempty"`
	SeriesID    string   `json:"seriesId,omitempty"`
	SeriesName  string   `json:"seriesName,omitempty"`
	SeriesIndex *float64 `json:"seriesIndex,omitempty"` // nil = position unknown
	Rating      float64  `json:"rating,omitempty"`      // 0 = unrated
	ReleaseYear int      `json:"releaseYear,omitempty"` // 0 = unknown
	CoverURL    string   `json:"coverUrl,omitempty"`
	Compilation bool     `json:"compilation,omitempty"`
	Ebook       bool     `json:"ebook,omitempty"`
	Audiobook   bool     `json:"audiobook,omitempty"`

	// LibraryBook is present iff the entry is in the local library.
	LibraryBook *LibraryBook `json:"libraryBook,omitempty"`
}

// InLibrary reports whether a local library record exists for this entry.
func (e *CatalogEntry) InLibrary() bool {
	return e.LibraryBook != nil
}

// Downloaded reports whether the entry is in the library with a file on disk.
func (e *CatalogEntry) Downloaded() bool {
	return e.LibraryBook != nil && e.LibraryBook.Status == StatusDownloaded
}

// HasSeries reports whether the entry carries enough series metadata to be
// grouped (both the series id and a display name).
func (e *CatalogEntry) HasSeries() bool {
	return e.SeriesID != "" && e.SeriesName != ""
}

// DisplayTitle returns the title with the series position when known,
// e.g. "Dune (#1)".
func (e *CatalogEntry) DisplayTitle() string {
	if e.SeriesIndex == nil || e.SeriesName == "" {
		return e.Title
	}
	idx := *e.SeriesIndex
	if idx == float64(int64(idx)) {
		return fmt.Sprintf("%s (#%d)", e.Title, int64(idx))
	}
	return fmt.Sprintf("%s (#%.1f)", e.Title, idx)
}

// Formats returns a short human-readable format summary ("ebook", "audio",
// "ebook+audio" or "").
func (e *CatalogEntry) Formats() string {
	switch {
	case e.Ebook && e.Audiobook:
		return "ebook+audio"
	case e.Ebook:
		return "ebook"
	case e.Audiobook:
		return "audio"
	default:
		return ""
	}
}

// AddOptions carries optional settings for an add mutation.
type AddOptions struct {
	// Monitored overrides the default monitored flag for the new library
	// record. nil means monitored.
	Monitored *bool
}

// MonitoredOrDefault resolves the monitored flag, defaulting to true.
func (o AddOptions) MonitoredOrDefault() bool {
	if o.Monitored == nil {
		return true
	}
	return *o.Monitored
}
