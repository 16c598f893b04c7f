package drove

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/fukua95/drove/queue"
)

// Pool is a work-stealing worker pool.
//
// Each worker owns a local WorkStealingDeque; a shared fine-grained
// queue holds tasks submitted from outside the pool. A worker drains
// its own deque first (LIFO), then the global queue, then tries to
// steal the oldest task from a sibling, and yields when all three come
// up empty.
type Pool struct {
	cfg     Config
	global  *queue.LinkedQueue[Task]
	workers []*worker

	// byGoid maps a worker goroutine's id to its worker, so a Submit
	// call made from inside a running task lands on the caller's own
	// deque instead of the global queue.
	gidMu  sync.RWMutex
	byGoid map[uint64]*worker

	// done is the shutdown flag, read once per worker loop iteration
	// without any lock.
	done atomic.Bool
	wg   sync.WaitGroup

	metrics poolMetrics
}

// poolMetrics tracks pool-wide counters.
type poolMetrics struct {
	submitted uint64 // atomic
	completed uint64 // atomic
	stolen    uint64 // atomic
}

// NewPool creates a pool and eagerly starts all its workers.
// It returns an error if the configuration is invalid.
//
// Example:
//
//	pool, err := drove.NewPool(
//	    drove.WithNumWorkers(4),
//	    drove.WithDequeCapacity(512),
//	)
func NewPool(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.NumWorkers == 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}

	p := &Pool{
		cfg:     cfg,
		global:  queue.NewLinkedQueue[Task](),
		workers: make([]*worker, cfg.NumWorkers),
		byGoid:  make(map[uint64]*worker, cfg.NumWorkers),
	}

	for i := range p.workers {
		p.workers[i] = newWorker(i, p, cfg.DequeCapacity)
	}

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(wk *worker) {
			defer p.wg.Done()
			wk.run()
		}(w)
	}

	return p, nil
}

// Submit enqueues a fire-and-forget task. When the caller is itself a
// pool worker the task goes to that worker's local deque; otherwise it
// goes to the global queue. Submit never blocks.
//
// Returns ErrNilTask if fn is nil and ErrPoolShutdown if the pool has
// been closed.
func (p *Pool) Submit(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	if p.done.Load() {
		return ErrPoolShutdown
	}
	p.enqueue(NewTask(fn))
	return nil
}

// Submit enqueues fn on the pool and returns a Future that completes
// with fn's result once a worker (or a helping caller) has run it. A
// panic inside fn completes the Future with a *PanicError. Submission
// never blocks, whatever the pool's load.
//
// Example:
//
//	f, err := drove.Submit(pool, func() (int, error) {
//	    return compute(), nil
//	})
//	if err != nil {
//	    return err
//	}
//	v, err := f.Get()
func Submit[R any](p *Pool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	if p.done.Load() {
		return nil, ErrPoolShutdown
	}

	f := newFuture[R]()
	p.enqueue(NewTask(func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				f.complete(zero, &PanicError{Value: r, Stack: string(debug.Stack())})
			}
		}()
		v, err := fn()
		f.complete(v, err)
	}))

	return f, nil
}

// enqueue routes a task to the submitting worker's deque when the
// caller is a pool worker, else to the global queue.
func (p *Pool) enqueue(t Task) {
	atomic.AddUint64(&p.metrics.submitted, 1)
	if w := p.callerWorker(); w != nil {
		w.local.Push(t)
		return
	}
	p.global.Push(t)
}

// RunPendingTask executes at most one pending task on the calling
// goroutine and reports whether it ran one. The search order is the
// same as a worker's: the caller's local deque (when the caller is a
// pool worker), then the global queue, then a round-robin steal.
//
// A task that blocks on another task's Future can call this in a loop
// to keep the pool making progress instead of idling a worker:
//
//	for !f.Completed() {
//	    pool.RunPendingTask()
//	}
func (p *Pool) RunPendingTask() bool {
	return p.runPendingTask(p.callerWorker())
}

// runPendingTask finds and executes one task for w, which is nil when
// the caller is not a pool worker.
func (p *Pool) runPendingTask(w *worker) bool {
	if w != nil {
		if t, ok := w.local.TryPop(); ok {
			p.execute(w, t)
			return true
		}
	}

	if t, ok := p.global.TryPop(); ok {
		p.execute(w, t)
		return true
	}

	if t, ok := p.stealTask(w); ok {
		if w != nil {
			atomic.AddUint64(&w.tasksStolen, 1)
		}
		atomic.AddUint64(&p.metrics.stolen, 1)
		p.execute(w, t)
		return true
	}

	return false
}

// stealTask polls every deque round-robin, starting just past the
// caller's own index so siblings aren't all hammering worker 0.
func (p *Pool) stealTask(w *worker) (Task, bool) {
	n := len(p.workers)
	start := 0
	if w != nil {
		start = w.id + 1
	}
	for i := 0; i < n; i++ {
		victim := p.workers[(start+i)%n]
		if t, ok := victim.local.TrySteal(); ok {
			return t, true
		}
	}
	return Task{}, false
}

// execute runs a task with panic recovery. Futures capture their own
// panics; this backstop covers fire-and-forget tasks so a panicking
// task never kills a worker.
func (p *Pool) execute(w *worker, t Task) {
	defer func() {
		if r := recover(); r != nil && p.cfg.PanicHandler != nil {
			p.cfg.PanicHandler(r)
		}
		if w != nil {
			atomic.AddUint64(&w.tasksExecuted, 1)
		}
		atomic.AddUint64(&p.metrics.completed, 1)
	}()

	t.Run()
}

// Close flips the shutdown flag and joins every worker. Tasks still
// queued when a worker observes the flag are abandoned: they never run
// and their Futures never complete. Close is safe to call multiple
// times and from multiple goroutines.
func (p *Pool) Close() {
	p.done.Store(true)
	p.wg.Wait()
}

// IsShutdown reports whether Close has been called.
func (p *Pool) IsShutdown() bool {
	return p.done.Load()
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

// Stats returns a snapshot of pool and per-worker counters.
func (p *Pool) Stats() Stats {
	submitted := atomic.LoadUint64(&p.metrics.submitted)
	completed := atomic.LoadUint64(&p.metrics.completed)

	workerStats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		workerStats[i] = WorkerStats{
			WorkerID:      i,
			TasksExecuted: atomic.LoadUint64(&w.tasksExecuted),
			TasksStolen:   atomic.LoadUint64(&w.tasksStolen),
			QueueDepth:    w.local.Len(),
		}
	}

	return Stats{
		Submitted:   submitted,
		Completed:   completed,
		Stolen:      atomic.LoadUint64(&p.metrics.stolen),
		InFlight:    submitted - completed,
		NumWorkers:  len(p.workers),
		WorkerStats: workerStats,
	}
}

// callerWorker returns the worker owned by the calling goroutine, or
// nil when the caller is not a pool worker.
func (p *Pool) callerWorker() *worker {
	id := goid()
	p.gidMu.RLock()
	w := p.byGoid[id]
	p.gidMu.RUnlock()
	return w
}

func (p *Pool) registerWorker(w *worker) {
	p.gidMu.Lock()
	p.byGoid[goid()] = w
	p.gidMu.Unlock()
}

func (p *Pool) unregisterWorker() {
	p.gidMu.Lock()
	delete(p.byGoid, goid())
	p.gidMu.Unlock()
}
