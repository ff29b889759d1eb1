package provider

import "shelfarr/internal/domain"

// toCatalogEntry converts a wire book into the domain shape.
func toCatalogEntry(r bookResource) *domain.CatalogEntry {
	e := &domain.CatalogEntry{
		ForeignID:   r.ForeignBookID,
		Title:       r.Title,
		AuthorName:  r.AuthorName,
		SeriesID:    r.SeriesID,
		SeriesName:  r.SeriesTitle,
		SeriesIndex: r.SeriesPosition,
		Rating:      r.Rating,
		ReleaseYear: r.ReleaseYear,
		CoverURL:    r.CoverURL,
		Compilation: r.Compilation,
		Ebook:       r.HasEbook,
		Audiobook:   r.HasAudiobook,
	}
	if r.ID != 0 {
		e.LibraryBook = &domain.LibraryBook{
			ID:        r.ID,
			Status:    toBookStatus(r.Status),
			Monitored: r.Monitored,
		}
	}
	return e
}

func toCatalogEntries(resources []bookResource) []*domain.CatalogEntry {
	entries := make([]*domain.CatalogEntry, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, toCatalogEntry(r))
	}
	return entries
}

func toBookStatus(s string) domain.BookStatus {
	switch domain.BookStatus(s) {
	case domain.StatusDownloaded, domain.StatusDownloading, domain.StatusMissing, domain.StatusUnreleased:
		return domain.BookStatus(s)
	default:
		return domain.StatusUnknown
	}
}
