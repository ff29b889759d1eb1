// Package notify holds transient user-visible feedback, independent of any
// specific mutation.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible before auto-expiry.
const DefaultTTL = 3 * time.Second

// Kind classifies a notification for rendering.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Notification is one transient message.
type Notification struct {
	ID        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Queue is a small append/expire queue. Notifications coexist in insertion
// order and identical messages are not deduplicated.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration

	// onChange fires after every visible change (push or removal).
	onChange func()
	now      func() time.Time
}

// NewQueue creates a queue. ttl <= 0 uses DefaultTTL. onChange may be nil.
func NewQueue(ttl time.Duration, onChange func()) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, onChange: onChange, now: time.Now}
}

// Push appends a notification and schedules its auto-removal. The returned
// id can be used for early dismissal; callers are free to ignore it.
func (q *Queue) Push(kind Kind, message string) string {
	id := uuid.NewString()

	q.mu.Lock()
	q.items = append(q.items, Notification{
		ID:        id,
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	})
	q.mu.Unlock()

	time.AfterFunc(q.ttl, func() { q.Dismiss(id) })

	q.changed()
	return id
}

// Dismiss removes a notification immediately. Calling it after the expiry
// timer has already fired is a safe no-op.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	removed := false
	for i, n := range q.items {
		if n.ID == id {
			q.items = slices.Delete(q.items, i, i+1)
			removed = true
			break
		}
	}
	q.mu.Unlock()

	if removed {
		q.changed()
	}
}

// Items returns the live notifications in insertion order.
func (q *Queue) Items() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Len returns the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) changed() {
	if q.onChange != nil {
		q.onChange()
	}
}
