// Package drove provides a work-stealing worker pool and the
// thread-safe queues it is built on.
//
// The pool keeps one local task deque per worker plus a single shared
// global queue. A worker always drains its own deque first (newest task
// first, which is the one most likely to still be cache-warm), falls
// back to the global queue, and finally tries to steal the oldest task
// from a sibling's deque. Submissions made from inside a running task
// stay on the submitting worker's deque, so producer and consumer tend
// to remain on one core.
//
// The queues live in the queue subpackage: a coarse single-lock
// SyncQueue and a fine-grained LinkedQueue whose head and tail are
// guarded by independent mutexes. The pool uses the fine-grained
// variant as its global queue; both are usable on their own.
//
// # Quick Start
//
//	pool, err := drove.NewPool()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	f, err := drove.Submit(pool, func() (int, error) {
//	    return expensiveComputation(), nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := f.Get() // blocks until a worker has run the task
//
// Fire-and-forget tasks skip the Future:
//
//	_ = pool.Submit(func() {
//	    fmt.Println("ran on some worker")
//	})
//
// # Configuration
//
// The pool runs runtime.NumCPU() workers by default. Customize it with
// functional options:
//
//	pool, err := drove.NewPool(
//	    drove.WithNumWorkers(8),
//	    drove.WithDequeCapacity(512),
//	    drove.WithPanicHandler(func(r interface{}) {
//	        log.Printf("task panicked: %v", r)
//	    }),
//	)
//
// # Error Handling
//
// A task submitted with Submit reports its error, or a *PanicError if
// it panicked, through its Future. A panicking fire-and-forget task is
// recovered by the worker and handed to the configured PanicHandler;
// either way the worker survives.
//
// # Shutdown
//
// Close flips an atomic shutdown flag and joins every worker. Workers
// finish the task they are running and exit; tasks still queued are
// abandoned, and their Futures never complete. Code that must not wait
// forever on a possibly-abandoned task should use GetContext:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	v, err := f.GetContext(ctx)
//
// # Nested Submission
//
// Tasks may submit further tasks; submission never blocks, so the pool
// is deadlock-free even when saturated. A task that needs the result
// of a task it just submitted should help out instead of sleeping:
//
//	inner, _ := drove.Submit(pool, step2)
//	for !inner.Completed() {
//	    pool.RunPendingTask() // run someone's work while we wait
//	}
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Ordering is FIFO
// through either queue taken alone; across local deques and the global
// queue the pool guarantees only that every accepted task runs exactly
// once while the pool is alive.
package drove
