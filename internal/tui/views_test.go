package tui

import (
	"strings"
	"testing"

	"shelfarr/internal/domain"
	"shelfarr/internal/library"
	"shelfarr/internal/notify"
	"shelfarr/internal/tui/styles"
)

func badgeModel() Model {
	cache := library.NewCache()
	queue := notify.NewQueue(0, nil)
	ctrl := library.NewController(nil, cache, queue, nil)
	return NewModel(nil, ctrl, queue, "", 4, nil)
}

func TestOwnershipBadgeToggle(t *testing.T) {
	m := badgeModel()
	ownedEntry := &domain.CatalogEntry{
		ForeignID:   "X1",
		LibraryBook: &domain.LibraryBook{ID: 1, Status: domain.StatusDownloaded},
	}
	missingEntry := &domain.CatalogEntry{ForeignID: "X2"}

	if !strings.Contains(m.ownershipBadge(ownedEntry), styles.OwnedChar) {
		t.Fatal("owned badge not rendered with badges enabled")
	}

	m.ShowBadges = false
	if got := m.ownershipBadge(ownedEntry); got != " " {
		t.Fatalf("owned badge with badges disabled = %q, want blank", got)
	}
	// The missing marker is not an ownership badge and survives the toggle.
	if !strings.Contains(m.ownershipBadge(missingEntry), styles.MissingChar) {
		t.Fatal("missing marker should survive the badge toggle")
	}
}
