package drove

import "runtime"

// worker is a single pool goroutine together with its local deque.
// The id and deque pointer are fixed at construction, before the
// goroutine starts, and never reassigned.
type worker struct {
	id    int
	pool  *Pool
	local *WorkStealingDeque

	tasksExecuted uint64 // atomic
	tasksStolen   uint64 // atomic
}

func newWorker(id int, pool *Pool, dequeCapacity int) *worker {
	return &worker{
		id:    id,
		pool:  pool,
		local: NewWorkStealingDeque(dequeCapacity),
	}
}

// run is the worker loop. It polls the shutdown flag once per
// iteration and yields the processor whenever no task was found, so an
// idle worker stays responsive without busy-spinning.
func (w *worker) run() {
	w.pool.registerWorker(w)
	defer w.pool.unregisterWorker()

	if w.pool.cfg.OnWorkerStart != nil {
		w.pool.cfg.OnWorkerStart(w.id)
	}

	for !w.pool.done.Load() {
		if !w.pool.runPendingTask(w) {
			runtime.Gosched()
		}
	}

	if w.pool.cfg.OnWorkerStop != nil {
		w.pool.cfg.OnWorkerStop(w.id)
	}
}

// goid returns the calling goroutine's id, parsed from the
// runtime.Stack header ("goroutine 123 [running]:").
func goid() uint64 {
	var buf [64]byte
	s := buf[:runtime.Stack(buf[:], false)]
	s = s[len("goroutine "):]
	var id uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
