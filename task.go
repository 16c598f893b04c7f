package drove

// Task is a single-shot, type-erased unit of work: a zero-argument,
// no-result callable wrapped exactly once.
//
// A Task is transferable across goroutine boundaries but must be run at
// most once; Run consumes the wrapped callable. The zero Task holds no
// callable and must never be run.
type Task struct {
	fn func()
}

// NewTask wraps fn as a Task. fn must be non-nil.
func NewTask(fn func()) Task {
	return Task{fn: fn}
}

// Run invokes the wrapped callable and consumes it. Running a zero or
// already-run Task panics.
func (t *Task) Run() {
	fn := t.fn
	t.fn = nil
	if fn == nil {
		panic("drove: Run on an empty or spent Task")
	}
	fn()
}

// Valid reports whether the Task still holds an unconsumed callable.
func (t *Task) Valid() bool {
	return t.fn != nil
}
