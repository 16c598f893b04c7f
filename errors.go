package drove

import "fmt"

// Common errors returned by the pool.
var (
	// ErrPoolShutdown is returned when submitting a task to a pool that
	// has been closed. A closed pool never accepts new tasks.
	ErrPoolShutdown = &PoolError{msg: "pool is shutdown"}

	// ErrNilTask is returned when submitting a nil function. All
	// submitted tasks must be non-nil.
	ErrNilTask = &PoolError{msg: "task is nil"}
)

// PoolError represents an error that occurred within the pool. It
// implements the error interface and supports unwrapping via
// errors.Is and errors.As.
type PoolError struct {
	msg string
	err error
}

// Error returns a formatted error message, including the underlying
// error when one exists.
func (e *PoolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("drove: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("drove: %s", e.msg)
}

// Unwrap returns the underlying error, if any.
func (e *PoolError) Unwrap() error {
	return e.err
}

// errInvalidConfig creates an error for invalid pool configuration.
func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg}
}

// PanicError wraps a value recovered from a panicking task, together
// with the stack captured at recovery. A Future carries it as the
// task's failure.
type PanicError struct {
	Value interface{}
	Stack string
}

// Error implements the error interface for PanicError.
func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}
