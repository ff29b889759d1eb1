// Package catalog loads collection contexts into the cache, going to the
// provider only when neither the cache nor the persistent store has them.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"shelfarr/internal/domain"
	"shelfarr/internal/library"
)

// maxContextAge bounds how long a persisted context may be served without
// going back to the provider.
const maxContextAge = 24 * time.Hour

// Service resolves collection contexts. Lookup order is cache, then
// persistent store, then the provider; provider results are written back
// to both layers. It also serves as the controller's conflict refresher.
type Service struct {
	repo   domain.CatalogRepository
	store  domain.Store
	cache  *library.Cache
	logger *slog.Logger
}

// NewService creates a catalog service. store may be nil to skip
// persistence (useful in tests).
func NewService(repo domain.CatalogRepository, store domain.Store, cache *library.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, store: store, cache: cache, logger: logger}
}

// AuthorBooks returns the entries of an author's bibliography context.
func (s *Service) AuthorBooks(ctx context.Context, authorID string) ([]*domain.CatalogEntry, error) {
	return s.resolve(ctx, domain.AuthorContext(authorID))
}

// SeriesBooks returns the entries of a series context.
func (s *Service) SeriesBooks(ctx context.Context, seriesID string) ([]*domain.CatalogEntry, error) {
	return s.resolve(ctx, domain.SeriesContext(seriesID))
}

// Search returns the entries of a search result context.
func (s *Service) Search(ctx context.Context, query string) ([]*domain.CatalogEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.resolve(ctx, domain.SearchContext(query))
}

// resolve loads one context: cache hit wins, then a still-fresh copy from
// the persistent store (which also warms the cache), then a provider fetch.
func (s *Service) resolve(ctx context.Context, key domain.ContextKey) ([]*domain.CatalogEntry, error) {
	if entries, ok := s.cache.Get(key); ok {
		s.logger.Debug("context cache hit", "key", key, "count", len(entries))
		return entries, nil
	}

	if s.store != nil {
		if entries, ok := s.store.GetContext(key); ok {
			if s.store.IsFresh(key, maxContextAge) {
				s.logger.Debug("context store hit", "key", key, "count", len(entries))
				s.cache.Set(key, entries)
				return entries, nil
			}
			s.logger.Debug("stored context is stale, refetching", "key", key)
		}
	}

	return s.fetch(ctx, key)
}

// Refresh refetches one context from the provider, bypassing both the
// cache and the store. Used by the controller after a conflict.
func (s *Service) Refresh(ctx context.Context, key domain.ContextKey) error {
	_, err := s.fetch(ctx, key)
	return err
}

// Invalidate drops a context from the cache and the store so the next
// resolve refetches it.
func (s *Service) Invalidate(key domain.ContextKey) {
	s.cache.Evict(key)
	if s.store != nil {
		s.store.InvalidateContext(key)
	}
}

// InvalidateAll wipes every cached and persisted context.
func (s *Service) InvalidateAll() {
	for _, key := range s.cache.Keys() {
		s.cache.Evict(key)
	}
	if s.store != nil {
		s.store.InvalidateAll()
	}
}

func (s *Service) fetch(ctx context.Context, key domain.ContextKey) ([]*domain.CatalogEntry, error) {
	var (
		entries []*domain.CatalogEntry
		err     error
	)
	switch key.Kind() {
	case domain.KindAuthor:
		entries, err = s.repo.GetAuthorBooks(ctx, key.ID())
	case domain.KindSeries:
		entries, err = s.repo.GetSeriesBooks(ctx, key.ID())
	case domain.KindSearch:
		entries, err = s.repo.Search(ctx, key.ID())
	default:
		return nil, fmt.Errorf("unknown context kind %q", key.Kind())
	}
	if err != nil {
		s.logger.Error("failed to fetch context", "key", key, "error", err)
		return nil, err
	}

	s.cache.Set(key, entries)
	if s.store != nil {
		if serr := s.store.SaveContext(key, entries); serr != nil {
			s.logger.Warn("failed to persist context", "key", key, "error", serr)
		}
	}
	s.logger.Debug("fetched context", "key", key, "count", len(entries))
	return entries, nil
}

// Narrow filters a result set down to entries fuzzily matching the query
// by title or author. An empty query keeps everything. Order is preserved.
func Narrow(entries []*domain.CatalogEntry, query string) []*domain.CatalogEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}

	out := make([]*domain.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if fuzzy.MatchNormalizedFold(query, e.Title) || fuzzy.MatchNormalizedFold(query, e.AuthorName) {
			out = append(out, e)
		}
	}
	return out
}
