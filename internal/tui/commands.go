package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shelfarr/internal/catalog"
	"shelfarr/internal/domain"
	"shelfarr/internal/library"
)

// Command factories for async operations

// LoadAuthorCmd loads an author's bibliography context
func LoadAuthorCmd(svc *catalog.Service, authorID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		entries, err := svc.AuthorBooks(ctx, authorID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading author"}
		}
		return ContextLoadedMsg{Key: domain.AuthorContext(authorID), Entries: entries}
	}
}

// LoadSeriesCmd loads a series context
func LoadSeriesCmd(svc *catalog.Service, seriesID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		entries, err := svc.SeriesBooks(ctx, seriesID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading series"}
		}
		return ContextLoadedMsg{Key: domain.SeriesContext(seriesID), Entries: entries}
	}
}

// SearchCmd loads a search result context
func SearchCmd(svc *catalog.Service, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		entries, err := svc.Search(ctx, query)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching"}
		}
		return ContextLoadedMsg{Key: domain.SearchContext(query), Entries: entries}
	}
}

// RefreshContextCmd refetches a context from the server, bypassing caches
func RefreshContextCmd(svc *catalog.Service, key domain.ContextKey) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := svc.Refresh(ctx, key); err != nil {
			return ErrMsg{Err: err, Context: "refreshing"}
		}
		return ContextChangedMsg{Key: key}
	}
}

// AddBookCmd adds a catalog entry to the library. Outcome feedback flows
// through the notification queue; the returned message only clears the
// pending indicator
func AddBookCmd(ctrl *library.Controller, foreignID string, opts domain.AddOptions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		ctrl.Add(ctx, foreignID, opts)
		return MutationDoneMsg{ForeignID: foreignID}
	}
}

// RemoveBookCmd removes a library record
func RemoveBookCmd(ctrl *library.Controller, foreignID string, localID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		ctrl.Remove(ctx, localID)
		return MutationDoneMsg{ForeignID: foreignID}
	}
}

// AddAllMissingCmd adds every entry in the list that is not yet owned
func AddAllMissingCmd(ctrl *library.Controller, entries []*domain.CatalogEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		dispatched := 0
		for _, e := range entries {
			if !e.InLibrary() {
				dispatched++
			}
		}
		ctrl.AddAllMissing(ctx, entries)
		return BulkAddDoneMsg{Dispatched: dispatched}
	}
}
