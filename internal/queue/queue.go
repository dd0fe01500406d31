// Package queue implements the bounded transport queue between logging
// goroutines and the backend. Any number of producers push concurrently;
// a single consumer drains in arrival order.
package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// FullPolicy decides what Push does when the queue is at capacity.
type FullPolicy int

const (
	// Block stalls the producer until a slot frees up.
	Block FullPolicy = iota

	// DropNewest rejects the pushed item and counts it as dropped.
	DropNewest

	// Grow doubles the backing storage; Push never stalls or drops.
	Grow
)

// String returns the configuration name of the policy.
func (p FullPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop"
	case Grow:
		return "grow"
	default:
		return "block"
	}
}

// Queue is a multi-producer, single-consumer ring buffer. Items pushed by
// one goroutine are popped in push order; items from different goroutines
// are ordered by Push completion, which is all the ordering the single
// consumer can observe.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []T
	head     int
	n        int
	policy   FullPolicy
	closed   bool

	dropped atomic.Uint64
}

// New creates a queue with the given initial capacity and full policy.
func New[T any](capacity int, policy FullPolicy) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	q := &Queue[T]{
		buf:    make([]T, capacity),
		policy: policy,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push enqueues item. It returns false when the item was not accepted:
// the queue is closed, or it is full under the DropNewest policy. Under
// Block it waits for space; under Grow it always succeeds.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	for {
		if q.closed {
			q.mu.Unlock()
			q.dropped.Add(1)
			return false
		}
		if q.n < len(q.buf) {
			q.buf[(q.head+q.n)%len(q.buf)] = item
			q.n++
			q.notEmpty.Signal()
			q.mu.Unlock()
			return true
		}
		switch q.policy {
		case Grow:
			q.grow()
		case DropNewest:
			q.mu.Unlock()
			q.dropped.Add(1)
			return false
		default:
			q.notFull.Wait()
		}
	}
}

// grow doubles the backing storage, un-wrapping the ring. Caller holds mu.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.buf)*2)
	for i := 0; i < q.n; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}

// PopBatch drains up to max items into dst (reused, returned re-sliced).
// When the queue is empty it waits up to maxWait for an item. The second
// result is false once the queue is closed and fully drained.
func (q *Queue[T]) PopBatch(dst []T, max int, maxWait time.Duration) ([]T, bool) {
	dst = dst[:0]
	q.mu.Lock()
	if q.n == 0 && !q.closed && maxWait > 0 {
		expired := false
		timer := time.AfterFunc(maxWait, func() {
			q.mu.Lock()
			expired = true
			q.notEmpty.Broadcast()
			q.mu.Unlock()
		})
		for q.n == 0 && !q.closed && !expired {
			q.notEmpty.Wait()
		}
		timer.Stop()
	}
	var zero T
	for q.n > 0 && len(dst) < max {
		dst = append(dst, q.buf[q.head])
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.n--
	}
	open := !q.closed || q.n > 0 || len(dst) > 0
	q.notFull.Broadcast()
	q.mu.Unlock()
	return dst, open
}

// Close marks the queue closed. Pending items remain poppable; further
// pushes are rejected. Blocked producers are released.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Dropped returns the number of items rejected since creation.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}
