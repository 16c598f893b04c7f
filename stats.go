package drove

// Stats is a snapshot of pool counters. All values are collected with
// atomic reads and no lock, so they may be slightly inconsistent with
// one another during concurrent operation.
type Stats struct {
	// Submitted is the total number of tasks accepted by the pool
	// since creation.
	Submitted uint64

	// Completed is the total number of tasks that have finished
	// executing, including tasks that panicked.
	Completed uint64

	// Stolen is the total number of tasks taken from another worker's
	// deque instead of the taker's own queue.
	Stolen uint64

	// InFlight is the estimated number of tasks currently queued or
	// executing: Submitted - Completed.
	InFlight uint64

	// NumWorkers is the number of workers in the pool. Fixed at
	// creation.
	NumWorkers int

	// WorkerStats holds per-worker counters, one entry per worker.
	WorkerStats []WorkerStats
}

// WorkerStats holds the counters of a single worker goroutine. Each
// worker maintains its own counters to avoid contention.
type WorkerStats struct {
	// WorkerID is the worker's index in the pool (0-based).
	WorkerID int

	// TasksExecuted is the number of tasks this worker has run,
	// whatever queue they came from.
	TasksExecuted uint64

	// TasksStolen is the number of tasks this worker took from a
	// sibling's deque.
	TasksStolen uint64

	// QueueDepth is the number of tasks in this worker's local deque
	// at snapshot time.
	QueueDepth int
}
