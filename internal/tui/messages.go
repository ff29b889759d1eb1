package tui

import (
	"shelfarr/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ContextLoadedMsg signals that a collection context finished loading
type ContextLoadedMsg struct {
	Key     domain.ContextKey
	Entries []*domain.CatalogEntry
}

// ContextChangedMsg signals that a cached context was patched or replaced
// behind the UI's back (mutation settlement, conflict refresh)
type ContextChangedMsg struct {
	Key domain.ContextKey
}

// NotificationsChangedMsg signals that the toast queue changed
type NotificationsChangedMsg struct{}

// MutationDoneMsg signals that an add or remove settled. User feedback is
// carried by the notification queue, not this message
type MutationDoneMsg struct {
	ForeignID string
}

// BulkAddDoneMsg signals that an add-all-missing run settled
type BulkAddDoneMsg struct {
	Dispatched int
}
