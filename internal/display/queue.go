package display

import "sync"

// Queue is an unbounded mailbox. Submit never blocks; one consumer drains it.
type Queue struct {
	mu      sync.Mutex
	pending []Update
	ready   chan struct{}
}

// NewQueue returns an empty mailbox.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Submit appends u and wakes the consumer.
func (q *Queue) Submit(u Update) {
	q.mu.Lock()
	q.pending = append(q.pending, u)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready signals that updates may be pending.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns everything submitted so far, in order.
func (q *Queue) Drain() []Update {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len reports the number of pending updates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
