package drove

import "sync"

// WorkStealingDeque is a per-worker double-ended task queue.
//
// The owning worker pushes and pops at one end (LIFO), so the task it
// runs next is the one it pushed last, which is the most likely to
// still be cache-warm. Thieves take from the opposite end (FIFO), so a
// steal grabs the oldest task and stays off the end the owner is
// working.
//
// A single mutex serializes Push, TryPop, and TrySteal. Storage is a
// growable power-of-two ring buffer indexed by monotonically increasing
// head (steal end) and tail (owner end) counters.
type WorkStealingDeque struct {
	mu   sync.Mutex
	buf  []Task
	mask int64
	head int64 // next steal slot
	tail int64 // next push slot
}

// DefaultDequeCapacity is the initial ring size used when none is given.
const DefaultDequeCapacity = 256

// NewWorkStealingDeque creates a deque with the given initial capacity,
// rounded up to a power of two. A capacity <= 0 selects the default.
func NewWorkStealingDeque(capacity int) *WorkStealingDeque {
	if capacity <= 0 {
		capacity = DefaultDequeCapacity
	}
	capacity = nextPowerOfTwo(capacity)
	return &WorkStealingDeque{
		buf:  make([]Task, capacity),
		mask: int64(capacity - 1),
	}
}

// Push adds a task at the owner end. It always succeeds, growing the
// ring when full. Owner-only.
func (d *WorkStealingDeque) Push(t Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tail-d.head == int64(len(d.buf)) {
		d.grow()
	}
	d.buf[d.tail&d.mask] = t
	d.tail++
}

// TryPop removes and returns the most recently pushed task (LIFO).
// Owner-only; never blocks.
func (d *WorkStealingDeque) TryPop() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tail == d.head {
		return Task{}, false
	}
	d.tail--
	idx := d.tail & d.mask
	t := d.buf[idx]
	d.buf[idx] = Task{}
	return t, true
}

// TrySteal removes and returns the oldest task (FIFO). Safe to call
// from any goroutine; never blocks.
func (d *WorkStealingDeque) TrySteal() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tail == d.head {
		return Task{}, false
	}
	idx := d.head & d.mask
	t := d.buf[idx]
	d.buf[idx] = Task{}
	d.head++
	return t, true
}

// Len returns the number of queued tasks at the time of the call.
func (d *WorkStealingDeque) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.tail - d.head)
}

// Empty reports whether the deque held no tasks at the time of the call.
func (d *WorkStealingDeque) Empty() bool {
	return d.Len() == 0
}

// Capacity returns the current ring size.
func (d *WorkStealingDeque) Capacity() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buf)
}

// grow doubles the ring, re-slotting live entries for the new mask.
// Caller must hold mu.
func (d *WorkStealingDeque) grow() {
	buf := make([]Task, len(d.buf)*2)
	mask := int64(len(buf) - 1)
	for i := d.head; i < d.tail; i++ {
		buf[i&mask] = d.buf[i&d.mask]
	}
	d.buf = buf
	d.mask = mask
}
