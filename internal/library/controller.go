package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shelfarr/internal/domain"
	"shelfarr/internal/notify"
)

// Refresher refetches one collection context from the server-of-record.
// Used after a conflict, when the optimistic patch cannot be trusted.
type Refresher interface {
	Refresh(ctx context.Context, key domain.ContextKey) error
}

// InvalidateFunc signals collaborators that contexts outside this cache
// (e.g. a library-wide listing page) should be treated as stale.
type InvalidateFunc func(keys []domain.ContextKey)

// Controller orchestrates add/remove actions against the context cache:
// it applies optimistic patches on settlement, downgrades conflict and
// not-found outcomes to success-shaped handling, and funnels all user
// feedback through the notification queue.
//
// Per key the lifecycle is idle -> pending -> settled -> idle; the pending
// marker is always cleared on settlement, whatever the outcome. There is no
// retry state: a retry is a new user-triggered dispatch.
type Controller struct {
	repo      domain.LibraryRepository
	cache     *Cache
	queue     *notify.Queue
	refresher Refresher
	onStale   InvalidateFunc
	logger    *slog.Logger

	mu            sync.Mutex
	pendingAdd    map[string]struct{}
	pendingRemove map[int64]struct{}
}

// NewController creates a controller. refresher and onStale may be nil.
func NewController(repo domain.LibraryRepository, cache *Cache, queue *notify.Queue, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		repo:          repo,
		cache:         cache,
		queue:         queue,
		logger:        logger,
		pendingAdd:    make(map[string]struct{}),
		pendingRemove: make(map[int64]struct{}),
	}
}

// SetRefresher wires the catalog service used for conflict recovery.
// Separate from the constructor because the catalog service itself is
// built on top of this package's cache.
func (c *Controller) SetRefresher(r Refresher) { c.refresher = r }

// SetInvalidateHook wires the collaborator stale-context signal.
func (c *Controller) SetInvalidateHook(fn InvalidateFunc) { c.onStale = fn }

// Cache returns the context cache the controller owns.
func (c *Controller) Cache() *Cache { return c.cache }

// IsAddPending reports whether an add for this foreign id is in flight.
// The UI checks this before dispatching; re-clicking while pending is a
// no-op at that layer, the controller does not deduplicate internally.
func (c *Controller) IsAddPending(foreignID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pendingAdd[foreignID]
	return ok
}

// IsRemovePending reports whether a remove for this local id is in flight.
func (c *Controller) IsRemovePending(localID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pendingRemove[localID]
	return ok
}

// Add adds a catalog entry to the library and patches every cached context
// containing it. A conflict (the book is already there) is success-shaped:
// the affected contexts are refreshed from the server-of-record, an info
// notification is emitted and the returned error is nil. Any other failure
// emits an error notification, applies no patch and returns the error.
func (c *Controller) Add(ctx context.Context, foreignID string, opts domain.AddOptions) (int64, error) {
	c.beginAdd(foreignID)
	defer c.endAdd(foreignID)

	title := c.titleFor(foreignID)

	localID, err := c.repo.AddBook(ctx, foreignID, opts)
	if err != nil {
		if domain.IsConflict(err) {
			c.logger.Info("add conflict, refreshing contexts", "foreignID", foreignID)
			keys := c.cache.ContextsContaining(foreignID)
			c.refreshContexts(ctx, keys)
			c.signalStale(keys)
			c.queue.Push(notify.Info, fmt.Sprintf("%s is already in your library", title))
			return 0, nil
		}
		c.logger.Error("failed to add book", "foreignID", foreignID, "error", err)
		c.queue.Push(notify.Error, fmt.Sprintf("Failed to add %s to library", title))
		return 0, err
	}

	keys := c.patchAdded(foreignID, localID, opts)
	c.logger.Debug("added book", "foreignID", foreignID, "localID", localID, "contexts", len(keys))
	c.queue.Push(notify.Success, fmt.Sprintf("Added %s to library", title))
	c.signalStale(keys)
	return localID, nil
}

// Remove deletes a library record and patches every cached entry carrying
// it. A not-found outcome means the desired end state already holds, so it
// is treated exactly like success. Any other failure emits an error
// notification and leaves the cache in its last-known-good state.
func (c *Controller) Remove(ctx context.Context, localID int64) error {
	c.beginRemove(localID)
	defer c.endRemove(localID)

	title := c.titleForLocal(localID)

	err := c.repo.RemoveBook(ctx, localID)
	if err != nil && !domain.IsNotFound(err) {
		c.logger.Error("failed to remove book", "localID", localID, "error", err)
		c.queue.Push(notify.Error, fmt.Sprintf("Failed to remove %s from library", title))
		return err
	}
	if err != nil {
		c.logger.Info("remove target already gone", "localID", localID)
	}

	keys := c.patchRemoved(localID)
	c.logger.Debug("removed book", "localID", localID, "contexts", len(keys))
	c.queue.Push(notify.Success, fmt.Sprintf("Removed %s from library", title))
	c.signalStale(keys)
	return nil
}

// AddAllMissing dispatches an independent Add for every entry not yet in
// the library. Operations are unordered and a failure of one never blocks
// or rolls back the others. Entries already pending are skipped.
func (c *Controller) AddAllMissing(ctx context.Context, entries []*domain.CatalogEntry) {
	var wg sync.WaitGroup
	for _, e := range entries {
		if e.InLibrary() || c.IsAddPending(e.ForeignID) {
			continue
		}
		wg.Add(1)
		go func(foreignID string) {
			defer wg.Done()
			c.Add(ctx, foreignID, domain.AddOptions{})
		}(e.ForeignID)
	}
	wg.Wait()
}

// --- patching ---

// patchAdded marks every cached occurrence of foreignID as in-library,
// synthesizing the local record from the returned id. Each match yields a
// replacement entry rather than a write to the cached one, so snapshots
// already handed to a renderer never change under it. Applying the same
// patch twice yields the same state: patches are idempotent, not
// incremental.
func (c *Controller) patchAdded(foreignID string, localID int64, opts domain.AddOptions) []domain.ContextKey {
	monitored := opts.MonitoredOrDefault()
	return c.guardedPatch(func(e *domain.CatalogEntry) *domain.CatalogEntry {
		if e.ForeignID != foreignID {
			return nil
		}
		next := *e
		// A freshly added book has no file yet.
		next.LibraryBook = &domain.LibraryBook{
			ID:        localID,
			Status:    domain.StatusMissing,
			Monitored: monitored,
		}
		return &next
	})
}

func (c *Controller) patchRemoved(localID int64) []domain.ContextKey {
	return c.guardedPatch(func(e *domain.CatalogEntry) *domain.CatalogEntry {
		if e.LibraryBook == nil || e.LibraryBook.ID != localID {
			return nil
		}
		next := *e
		next.LibraryBook = nil
		return &next
	})
}

// guardedPatch keeps a patching bug from crashing the notification path.
func (c *Controller) guardedPatch(fn func(*domain.CatalogEntry) *domain.CatalogEntry) (keys []domain.ContextKey) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("cache patch panicked", "recover", r)
		}
	}()
	return c.cache.patch(fn)
}

// refreshContexts refetches the given contexts from the server-of-record.
// A refresh failure leaves the last-known-good list in place.
func (c *Controller) refreshContexts(ctx context.Context, keys []domain.ContextKey) {
	if c.refresher == nil {
		return
	}
	for _, key := range keys {
		if err := c.refresher.Refresh(ctx, key); err != nil {
			c.logger.Warn("context refresh failed", "key", key, "error", err)
		}
	}
}

func (c *Controller) signalStale(keys []domain.ContextKey) {
	if c.onStale != nil && len(keys) > 0 {
		c.onStale(keys)
	}
}

// --- pending bookkeeping ---

func (c *Controller) beginAdd(foreignID string) {
	c.mu.Lock()
	c.pendingAdd[foreignID] = struct{}{}
	c.mu.Unlock()
}

func (c *Controller) endAdd(foreignID string) {
	c.mu.Lock()
	delete(c.pendingAdd, foreignID)
	c.mu.Unlock()
}

func (c *Controller) beginRemove(localID int64) {
	c.mu.Lock()
	c.pendingRemove[localID] = struct{}{}
	c.mu.Unlock()
}

func (c *Controller) endRemove(localID int64) {
	c.mu.Lock()
	delete(c.pendingRemove, localID)
	c.mu.Unlock()
}

// --- display helpers ---

// titleFor names the item in notifications, falling back to a generic noun
// when the entry is not cached anywhere.
func (c *Controller) titleFor(foreignID string) string {
	for _, key := range c.cache.ContextsContaining(foreignID) {
		entries, _ := c.cache.Get(key)
		for _, e := range entries {
			if e.ForeignID == foreignID && e.Title != "" {
				return e.Title
			}
		}
	}
	return "book"
}

func (c *Controller) titleForLocal(localID int64) string {
	for _, key := range c.cache.Keys() {
		entries, _ := c.cache.Get(key)
		for _, e := range entries {
			if e.LibraryBook != nil && e.LibraryBook.ID == localID && e.Title != "" {
				return e.Title
			}
		}
	}
	return "book"
}
