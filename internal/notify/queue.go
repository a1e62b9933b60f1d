// Package notify implements the ephemeral notification queue that session
// and board operations report their outcomes through.
package notify

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careboard/internal/model"
)

// DefaultTTL is how long a notification stays in the queue.
const DefaultTTL = 5 * time.Second

// Notifier is the write side of the queue handed to other components.
type Notifier interface {
	Enqueue(message string, typ model.NotificationType) uint64
}

// Recorder receives a copy of every enqueued notification.
type Recorder interface {
	Record(n model.Notification)
}

// ChangedMsg is a tea.Msg sent when the queue contents changed.
type ChangedMsg struct{}

// Option configures a Queue.
type Option func(*Queue)

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(q *Queue) {
		q.recorder = r
	}
}

// WithClock overrides time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// Queue holds active notifications in insertion order. Each entry is
// removed automatically ttl after it was enqueued, or earlier by Dismiss.
type Queue struct {
	ttl      time.Duration
	recorder Recorder
	now      func() time.Time

	mu      sync.Mutex
	nextID  uint64
	entries []model.Notification
	timers  map[uint64]*time.Timer
	closed  bool

	// changes is a one-slot coalescing signal.
	changes chan struct{}
}

// New creates a queue whose entries expire after ttl. A non-positive ttl
// selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{
		ttl:     ttl,
		now:     time.Now,
		timers:  make(map[uint64]*time.Timer),
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a notification, schedules its removal, and returns its id.
// Ids come from a monotonic counter and are never reused.
func (q *Queue) Enqueue(message string, typ model.NotificationType) uint64 {
	q.mu.Lock()
	q.nextID++
	n := model.Notification{
		ID:        q.nextID,
		Message:   message,
		Type:      typ,
		CreatedAt: q.now(),
	}
	if !q.closed {
		q.entries = append(q.entries, n)
		id := n.ID
		q.timers[id] = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	}
	q.mu.Unlock()

	q.signal()
	if q.recorder != nil {
		q.recorder.Record(n)
	}
	return n.ID
}

// Info enqueues an informational notification.
func (q *Queue) Info(message string) uint64 {
	return q.Enqueue(message, model.NotificationInfo)
}

// Success enqueues a success notification.
func (q *Queue) Success(message string) uint64 {
	return q.Enqueue(message, model.NotificationSuccess)
}

// Error enqueues an error notification.
func (q *Queue) Error(message string) uint64 {
	return q.Enqueue(message, model.NotificationError)
}

// Dismiss removes the notification with id. It is a no-op when the entry
// already expired or was dismissed.
func (q *Queue) Dismiss(id uint64) {
	q.mu.Lock()
	removed := false
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			removed = true
			break
		}
	}
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	if removed {
		q.signal()
	}
}

// DismissNewest removes the most recently enqueued active notification.
// It reports whether anything was removed.
func (q *Queue) DismissNewest() bool {
	q.mu.Lock()
	if len(q.entries) == 0 {
		q.mu.Unlock()
		return false
	}
	id := q.entries[len(q.entries)-1].ID
	q.mu.Unlock()

	q.Dismiss(id)
	return true
}

// List returns a snapshot of the active notifications, oldest first.
func (q *Queue) List() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len returns the number of active notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Changes returns a channel that receives a value after the queue changed.
// Signals coalesce: several changes may produce a single receive.
func (q *Queue) Changes() <-chan struct{} {
	return q.changes
}

// WaitForChange returns a tea.Cmd that blocks until the queue changes and
// then yields ChangedMsg. Re-issue it after handling each ChangedMsg to
// keep listening.
func (q *Queue) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		<-q.changes
		return ChangedMsg{}
	}
}

// Close stops all pending expiry timers and drops active entries.
// Notifications enqueued afterwards are still recorded but never listed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.entries = nil
	q.closed = true
}

func (q *Queue) signal() {
	select {
	case q.changes <- struct{}{}:
	default:
		// A signal is already pending.
	}
}
