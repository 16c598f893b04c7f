package drove

import "context"

// Future is the eventual result of a task submitted with Submit. It is
// completed exactly once, by whichever goroutine executes the task,
// with either the task's value or its failure.
//
// A Future belonging to a task that is still queued when the pool is
// closed never completes: undrained tasks are abandoned, not cancelled.
// Use GetContext to bound the wait in that case.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete records the outcome and releases all waiters. Must be called
// at most once.
func (f *Future[R]) complete(v R, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

// Get blocks until the task has run, then returns its result. A panic
// inside the task surfaces here as a *PanicError.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetContext is Get with a deadline: it returns the task's result, or
// ctx.Err() if the context expires first.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the task has run. It can
// be polled or combined with other channels in a select.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Completed reports whether the task has already run.
func (f *Future[R]) Completed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
