package feed

import (
	"context"
	"sync"
)

// Queue is a thread-safe FIFO buffer between the transport adapter and
// the consumer pool.
//
// The queue is unbounded so a bursty upstream never blocks the adapter;
// backpressure is applied downstream by the consumer pool's concurrency
// limit, which mirrors the transport's prefetch configuration.
//
// The queue uses a signal channel (buffered, size 1) so Dequeue can wait
// for availability without spinning and still honor context cancellation.
type Queue struct {
	mu     sync.Mutex
	msgs   []Message
	closed bool
	signal chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		msgs:   make([]Message, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a message to the back of the queue.
// Safe from any goroutine. Returns false if the queue is closed.
func (q *Queue) Enqueue(msg Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.msgs = append(q.msgs, msg)

	// Non-blocking signal; a buffer of 1 coalesces multiple notifications.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Dequeue removes and returns the front message, blocking until one is
// available, the queue is drained after Close, or ctx is done.
// The second return is false when no more messages will arrive.
func (q *Queue) Dequeue(ctx context.Context) (Message, bool) {
	for {
		if msg, ok := q.tryDequeue(); ok {
			return msg, true
		}

		q.mu.Lock()
		done := q.closed && len(q.msgs) == 0
		q.mu.Unlock()
		if done {
			// Cascade the wakeup so any other waiter also observes the
			// closed state.
			select {
			case q.signal <- struct{}{}:
			default:
			}
			return nil, false
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-q.signal:
		}
	}
}

// tryDequeue pops the front message without blocking.
func (q *Queue) tryDequeue() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.msgs) == 0 {
		return nil, false
	}

	msg := q.msgs[0]
	// Nil the slot so the backing array doesn't retain the payload.
	q.msgs[0] = nil
	if len(q.msgs) == 1 {
		q.msgs = q.msgs[:0]
	} else {
		q.msgs = q.msgs[1:]
	}
	return msg, true
}

// Close marks the queue as closed. Pending messages remain dequeuable;
// further Enqueue calls return false. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	// Wake any waiting Dequeue so it can observe the closed state.
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Len returns the number of buffered messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}
