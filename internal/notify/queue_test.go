package notify_test

import (
	"testing"
	"time"

	"shelfarr/internal/notify"
)

func TestPushAndAutoExpiry(t *testing.T) {
	q := notify.NewQueue(20*time.Millisecond, nil)

	id := q.Push(notify.Success, "Added Dune to library")
	if id == "" {
		t.Fatal("expected a notification id")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 live notification, got %d", q.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("notification never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Dismissing after expiry must be a safe no-op.
	q.Dismiss(id)
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestDismissRemovesEarly(t *testing.T) {
	q := notify.NewQueue(time.Minute, nil)

	id := q.Push(notify.Error, "something broke")
	q.Push(notify.Info, "unrelated")

	q.Dismiss(id)

	items := q.Items()
	if len(items) != 1 || items[0].Message != "unrelated" {
		t.Fatalf("unexpected items after dismiss: %+v", items)
	}

	// Second dismissal of the same id is a no-op.
	q.Dismiss(id)
	if q.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", q.Len())
	}
}

func TestInsertionOrderAndNoDeduplication(t *testing.T) {
	q := notify.NewQueue(time.Minute, nil)

	q.Push(notify.Error, "download failed")
	q.Push(notify.Error, "download failed")
	q.Push(notify.Success, "done")

	items := q.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Message != "download failed" || items[1].Message != "download failed" {
		t.Fatalf("identical messages must both appear: %+v", items)
	}
	if items[0].ID == items[1].ID {
		t.Fatal("ids must be unique while alive")
	}
	if items[2].Message != "done" {
		t.Fatalf("insertion order broken: %+v", items)
	}
}

func TestOnChangeFires(t *testing.T) {
	changes := make(chan struct{}, 8)
	q := notify.NewQueue(time.Minute, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	id := q.Push(notify.Info, "hello")
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("push did not fire onChange")
	}

	q.Dismiss(id)
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("dismiss did not fire onChange")
	}

	// Dismissing an unknown id must not fire onChange.
	q.Dismiss("nope")
	select {
	case <-changes:
		t.Fatal("no-op dismiss fired onChange")
	case <-time.After(50 * time.Millisecond):
	}
}
