package queue

import (
	"sync"

	ring "github.com/eapache/queue"
)

// SyncQueue is a thread-safe FIFO queue guarded by a single mutex and
// condition variable, backed by a growable ring buffer.
//
// Values are stored in their final form at push time, so popping is a
// plain hand-off: once a waiter is woken there is no step left that can
// fail between removing a value and delivering it to the caller.
type SyncQueue[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  *ring.Queue
}

// NewSyncQueue creates an empty SyncQueue.
func NewSyncQueue[T any]() *SyncQueue[T] {
	q := &SyncQueue[T]{buf: ring.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v and wakes at most one blocked WaitPop caller.
func (q *SyncQueue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Add(v)
	q.cond.Signal()
}

// TryPop removes and returns the oldest value without blocking.
func (q *SyncQueue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.buf.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.buf.Remove().(T), true
}

// WaitPop removes and returns the oldest value, blocking until one is
// available.
func (q *SyncQueue[T]) WaitPop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.buf.Length() == 0 {
		q.cond.Wait()
	}
	return q.buf.Remove().(T)
}

// Empty reports whether the queue held no values at the time of the call.
func (q *SyncQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Length() == 0
}

// Len returns the number of queued values at the time of the call.
func (q *SyncQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Length()
}

var _ Queue[int] = (*SyncQueue[int])(nil)
