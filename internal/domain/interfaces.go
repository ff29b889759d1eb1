package domain

import (
	"context"
	"time"
)

// CatalogRepository provides read access to the external metadata provider.
type CatalogRepository interface {
	// GetAuthorBooks returns every catalog entry for an author.
	GetAuthorBooks(ctx context.Context, authorID string) ([]*CatalogEntry, error)

	// GetSeriesBooks returns every catalog entry in a series.
	GetSeriesBooks(ctx context.Context, seriesID string) ([]*CatalogEntry, error)

	// Search returns catalog entries matching a free-text query.
	Search(ctx context.Context, query string) ([]*CatalogEntry, error)
}

// LibraryRepository performs mutations against the locally owned library.
type LibraryRepository interface {
	// AddBook creates a library record for a catalog entry and returns the
	// local id. Rejects with a conflict error when a record already exists.
	AddBook(ctx context.Context, foreignID string, opts AddOptions) (int64, error)

	// RemoveBook deletes a library record. Rejects with a not-found error
	// when the record is already gone.
	RemoveBook(ctx context.Context, localID int64) error
}

// Store persists fetched collection contexts between runs.
// All methods return instantly and never block on network.
type Store interface {
	GetContext(key ContextKey) ([]*CatalogEntry, bool)
	SaveContext(key ContextKey, entries []*CatalogEntry) error

	// IsFresh reports whether the stored copy of a context is younger
	// than maxAge. Unknown contexts are never fresh.
	IsFresh(key ContextKey, maxAge time.Duration) bool

	InvalidateContext(key ContextKey)
	InvalidateAll()
	Close() error
}
