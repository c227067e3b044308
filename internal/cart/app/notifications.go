package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

// notificationQueue holds live notifications oldest first. Each entry owns a
// one-shot expiry timer that is stopped on dismissal or eviction.
type notificationQueue struct {
	ttl   time.Duration
	limit int

	mu      sync.Mutex
	nextID  uint64
	entries []*queuedNotification
	closed  bool
}

type queuedNotification struct {
	n     domain.Notification
	timer *time.Timer
}

func newNotificationQueue(ttl time.Duration, limit int) *notificationQueue {
	return &notificationQueue{ttl: ttl, limit: limit}
}

func (q *notificationQueue) push(kind domain.NotificationKind, message string, now time.Time) domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	n := domain.Notification{
		ID:        q.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
	}
	if q.closed {
		return n
	}

	if q.limit > 0 && len(q.entries) >= q.limit {
		oldest := q.entries[0]
		oldest.timer.Stop()
		q.entries = slices.Delete(q.entries, 0, 1)
	}

	id := n.ID
	e := &queuedNotification{n: n}
	e.timer = time.AfterFunc(q.ttl, func() { q.remove(id) })
	q.entries = append(q.entries, e)
	return n
}

// remove drops the entry with the given id. Unknown ids are ignored.
func (q *notificationQueue) remove(id uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.entries, func(e *queuedNotification) bool { return e.n.ID == id })
	if i < 0 {
		return false
	}
	q.entries[i].timer.Stop()
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

func (q *notificationQueue) snapshot() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.n)
	}
	return out
}

func (q *notificationQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.closed = true
}
