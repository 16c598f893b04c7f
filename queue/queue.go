// Package queue provides thread-safe FIFO queues for concurrent
// producers and consumers.
//
// Two implementations are available with the same external contract:
//
//   - SyncQueue protects the whole queue with a single mutex. It is the
//     simplest correct implementation and a good default.
//   - LinkedQueue protects the head and the tail with independent
//     mutexes, so a push and a pop never contend with each other.
//
// Both preserve strict FIFO order: values are popped in the order they
// were pushed, program-wide, across all producers and consumers.
package queue

// Queue is a thread-safe FIFO queue.
//
// All methods are safe for concurrent use. Empty and Len are
// point-in-time snapshots and may be stale by the time they return.
type Queue[T any] interface {
	// Push appends a value to the queue. It always succeeds and wakes
	// at most one goroutine blocked in WaitPop.
	Push(v T)

	// TryPop removes and returns the oldest value. It never blocks;
	// the second return value reports whether a value was present.
	TryPop() (T, bool)

	// WaitPop removes and returns the oldest value, blocking the
	// calling goroutine until one is available.
	WaitPop() T

	// Empty reports whether the queue held no values at the time of
	// the call.
	Empty() bool

	// Len returns the number of queued values at the time of the call.
	Len() int
}
