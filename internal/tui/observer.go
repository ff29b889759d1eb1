package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"shelfarr/internal/domain"
)

// Relay forwards cache and notification events into the running Bubble Tea
// program. The cache and queue are built before the program exists, so the
// relay buffers nothing: events arriving before Attach are dropped, the
// first full render reads current state anyway.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

// NewRelay creates a detached relay.
func NewRelay() *Relay {
	return &Relay{}
}

// Attach connects the relay to a running program.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// ContextChanged reports a patched or replaced context. Safe to call from
// any goroutine.
func (r *Relay) ContextChanged(key domain.ContextKey) {
	r.send(ContextChangedMsg{Key: key})
}

// NotificationsChanged reports a toast queue change.
func (r *Relay) NotificationsChanged() {
	r.send(NotificationsChangedMsg{})
}

func (r *Relay) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
