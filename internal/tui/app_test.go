package tui_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"shelfarr/internal/domain"
	"shelfarr/internal/library"
	"shelfarr/internal/notify"
	"shelfarr/internal/tui"
	"shelfarr/internal/view"
)

type fakeRepo struct{}

func (fakeRepo) AddBook(context.Context, string, domain.AddOptions) (int64, error) { return 1, nil }
func (fakeRepo) RemoveBook(context.Context, int64) error                           { return nil }

func owned(foreignID, title string, localID int64) *domain.CatalogEntry {
	return &domain.CatalogEntry{
		ForeignID:   foreignID,
		Title:       title,
		LibraryBook: &domain.LibraryBook{ID: localID, Status: domain.StatusDownloaded},
	}
}

func newModel(t *testing.T) tui.Model {
	t.Helper()
	cache := library.NewCache()
	queue := notify.NewQueue(0, nil)
	ctrl := library.NewController(fakeRepo{}, cache, queue, nil)
	return tui.NewModel(nil, ctrl, queue, "", 4, nil)
}

func loaded(t *testing.T, m tui.Model, key domain.ContextKey, entries []*domain.CatalogEntry) tui.Model {
	t.Helper()
	next, _ := m.Update(tui.ContextLoadedMsg{Key: key, Entries: entries})
	return next.(tui.Model)
}

func press(t *testing.T, m tui.Model, key string) (tui.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(tui.Model), cmd
}

func TestContextLoadedDerivesView(t *testing.T) {
	m := newModel(t)
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		{ForeignID: "X1", Title: "Beta"},
		{ForeignID: "X2", Title: "Alpha"},
	})

	if m.Derived.TotalCount != 2 || m.Derived.FilteredCount != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", m.Derived.FilteredCount, m.Derived.TotalCount)
	}
	// Default author sort is title ascending.
	if m.Derived.Entries[0].Title != "Alpha" {
		t.Fatalf("first entry = %q, want Alpha", m.Derived.Entries[0].Title)
	}
}

func TestFilterCycleNarrowsAndClampsCursor(t *testing.T) {
	m := newModel(t)
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		{ForeignID: "X1", Title: "Alpha"},
		{ForeignID: "X2", Title: "Beta"},
		owned("X3", "Gamma", 501),
	})

	// Move to the last row, then filter to owned only.
	m, _ = press(t, m, "G")
	m, _ = press(t, m, "f") // all -> inLibrary
	if m.Derived.FilteredCount != 1 {
		t.Fatalf("filtered = %d, want 1", m.Derived.FilteredCount)
	}
	if m.Cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", m.Cursor)
	}
	if m.Derived.TotalCount != 3 {
		t.Fatalf("total = %d, want 3", m.Derived.TotalCount)
	}
}

func TestSortToggleReverses(t *testing.T) {
	m := newModel(t)
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		{ForeignID: "X1", Title: "Alpha"},
		{ForeignID: "X2", Title: "Beta"},
	})

	m, _ = press(t, m, "S")
	if m.Derived.Entries[0].Title != "Beta" {
		t.Fatalf("descending first = %q, want Beta", m.Derived.Entries[0].Title)
	}
}

func TestViewStateRetainedPerContext(t *testing.T) {
	m := newModel(t)
	author := domain.AuthorContext("9")
	series := domain.SeriesContext("7")

	m = loaded(t, m, author, []*domain.CatalogEntry{{ForeignID: "X1", Title: "Alpha"}})
	m, _ = press(t, m, "f") // author page: all -> inLibrary

	m = loaded(t, m, series, []*domain.CatalogEntry{{ForeignID: "X2", Title: "Beta"}})
	if m.Derived.FilteredCount != 1 {
		t.Fatalf("series page inherited the author filter")
	}
	if st := m.States[series]; st.SortField != view.SortSeriesIndex {
		t.Fatalf("series default sort = %q, want seriesIndex", st.SortField)
	}

	// Revisit the author context: its filter survives.
	m = loaded(t, m, author, []*domain.CatalogEntry{{ForeignID: "X1", Title: "Alpha"}})
	if st := m.States[author]; st.FilterStatus != view.FilterInLibrary {
		t.Fatalf("author filter = %q, want inLibrary", st.FilterStatus)
	}
}

func TestAddKeyOnlyDispatchesForUnowned(t *testing.T) {
	m := newModel(t)
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		{ForeignID: "X1", Title: "Alpha"},
		owned("X2", "Beta", 501),
	})

	_, cmd := press(t, m, "a")
	if cmd == nil {
		t.Fatal("add on unowned entry should dispatch")
	}

	m, _ = press(t, m, "j")
	_, cmd = press(t, m, "a")
	if cmd != nil {
		t.Fatal("add on owned entry should be a no-op")
	}
}

func TestRemoveKeyOnlyDispatchesForOwned(t *testing.T) {
	m := newModel(t)
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		{ForeignID: "X1", Title: "Alpha"},
		owned("X2", "Beta", 501),
	})

	_, cmd := press(t, m, "d")
	if cmd != nil {
		t.Fatal("remove on unowned entry should be a no-op")
	}

	m, _ = press(t, m, "j")
	_, cmd = press(t, m, "d")
	if cmd == nil {
		t.Fatal("remove on owned entry should dispatch")
	}
}

func TestRemoveConfirmationFlow(t *testing.T) {
	m := newModel(t)
	m.ConfirmOnRemove = true
	m = loaded(t, m, domain.AuthorContext("9"), []*domain.CatalogEntry{
		owned("X1", "Alpha", 501),
	})

	m, cmd := press(t, m, "d")
	if cmd != nil {
		t.Fatal("remove dispatched without confirmation")
	}
	if m.ConfirmRemove == nil {
		t.Fatal("expected a pending confirmation")
	}

	// Any key but y/enter cancels.
	m, cmd = press(t, m, "n")
	if cmd != nil {
		t.Fatal("cancelled confirmation still dispatched")
	}
	if m.ConfirmRemove != nil {
		t.Fatal("cancel did not clear the prompt")
	}

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	if cmd == nil {
		t.Fatal("confirmed remove did not dispatch")
	}
	if m.ConfirmRemove != nil {
		t.Fatal("prompt not cleared after confirmation")
	}
}

func TestDefaultViewModeAppliesToNewContexts(t *testing.T) {
	m := newModel(t)
	m.DefaultViewMode = view.ViewList

	key := domain.AuthorContext("9")
	m = loaded(t, m, key, []*domain.CatalogEntry{{ForeignID: "X1", Title: "Alpha"}})

	if st := m.States[key]; st.ViewMode != view.ViewList {
		t.Fatalf("view mode = %q, want list", st.ViewMode)
	}
}

func TestContextChangedReloadsFromCache(t *testing.T) {
	cache := library.NewCache()
	queue := notify.NewQueue(0, nil)
	ctrl := library.NewController(fakeRepo{}, cache, queue, nil)
	m := tui.NewModel(nil, ctrl, queue, "", 4, nil)

	key := domain.AuthorContext("9")
	m = loaded(t, m, key, []*domain.CatalogEntry{{ForeignID: "X1", Title: "Alpha"}})

	cache.Set(key, []*domain.CatalogEntry{owned("X1", "Alpha", 501)})
	next, _ := m.Update(tui.ContextChangedMsg{Key: key})
	m = next.(tui.Model)

	if !m.Derived.Entries[0].InLibrary() {
		t.Fatal("context change did not reload the patched entries")
	}
}
