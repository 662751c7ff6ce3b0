package security

import (
	"slices"
	"sync"

	audit "caslkey/pkg/platform/audit"
)

const defaultCapacity = 4096

// eventQueue holds access violations until the next flush. It keeps at most
// limit events; a burst beyond that discards the oldest.
type eventQueue struct {
	mu      sync.Mutex
	pending []audit.SecurityEvent
	limit   int
	dropped int64
}

func newEventQueue(limit int) *eventQueue {
	if limit <= 0 {
		limit = defaultCapacity
	}
	return &eventQueue{limit: limit}
}

func (q *eventQueue) push(event audit.SecurityEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == q.limit {
		q.pending = slices.Delete(q.pending, 0, 1)
		q.dropped++
	}
	q.pending = append(q.pending, event)
}

// take removes and returns up to n of the oldest events.
func (q *eventQueue) take(n int) []audit.SecurityEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	n = min(n, len(q.pending))
	if n == 0 {
		return nil
	}
	batch := slices.Clone(q.pending[:n])
	q.pending = slices.Delete(q.pending, 0, n)
	return batch
}

func (q *eventQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *eventQueue) droppedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
