package queue

import "sync"

// LinkedQueue is a thread-safe FIFO queue built on a singly linked list
// with fine-grained locking: the head and the tail are protected by
// independent mutexes, so a Push and a Pop proceed concurrently without
// blocking each other.
//
// The list always contains a preallocated dummy node with no data. It
// separates the node accessed at the head from the node accessed at the
// tail, so there is never a race on a shared node's next pointer and
// the two locks stay disjoint. The queue is empty iff head == tail.
type LinkedQueue[T any] struct {
	headMu sync.Mutex
	head   *node[T]
	cond   *sync.Cond // signaled on push, waits on headMu

	tailMu sync.Mutex
	tail   *node[T]
}

type node[T any] struct {
	data T
	next *node[T]
}

// NewLinkedQueue creates an empty LinkedQueue.
func NewLinkedQueue[T any]() *LinkedQueue[T] {
	dummy := &node[T]{}
	q := &LinkedQueue[T]{head: dummy, tail: dummy}
	q.cond = sync.NewCond(&q.headMu)
	return q
}

// Push appends v and wakes at most one blocked WaitPop caller.
//
// The value is attached to the current tail node and a fresh dummy is
// linked in behind it, all under the tail lock only.
func (q *LinkedQueue[T]) Push(v T) {
	n := &node[T]{}

	q.tailMu.Lock()
	q.tail.data = v
	q.tail.next = n
	q.tail = n
	q.tailMu.Unlock()

	// Signal after releasing the tail lock so a woken consumer doesn't
	// immediately block on a lock still held here.
	q.cond.Signal()
}

// TryPop removes and returns the oldest value without blocking.
func (q *LinkedQueue[T]) TryPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	if q.head == q.tailNode() {
		var zero T
		return zero, false
	}
	return q.popHead(), true
}

// WaitPop removes and returns the oldest value, blocking until one is
// available.
func (q *LinkedQueue[T]) WaitPop() T {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	for q.head == q.tailNode() {
		q.cond.Wait()
	}
	return q.popHead()
}

// Empty reports whether the queue held no values at the time of the call.
func (q *LinkedQueue[T]) Empty() bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head == q.tailNode()
}

// Len returns the number of queued values at the time of the call.
func (q *LinkedQueue[T]) Len() int {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	tail := q.tailNode()
	n := 0
	for nd := q.head; nd != tail; nd = nd.next {
		n++
	}
	return n
}

// tailNode snapshots the tail pointer under the tail lock. Comparing
// head against an unlocked read of tail would race with Push.
func (q *LinkedQueue[T]) tailNode() *node[T] {
	q.tailMu.Lock()
	defer q.tailMu.Unlock()
	return q.tail
}

// popHead detaches the head node, hands its data to the caller, and
// promotes its successor to the new head. The detached node is left
// for the GC.
//
// Caller must hold headMu and have verified the queue is non-empty.
func (q *LinkedQueue[T]) popHead() T {
	old := q.head
	q.head = old.next
	return old.data
}

var _ Queue[int] = (*LinkedQueue[int])(nil)
