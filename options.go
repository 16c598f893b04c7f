package drove

// Option configures a Pool.
type Option func(*Config)

// WithNumWorkers sets the number of worker goroutines.
// A value of 0 selects runtime.NumCPU().
func WithNumWorkers(n int) Option {
	return func(c *Config) { c.NumWorkers = n }
}

// WithDequeCapacity sets the initial capacity of each worker's local
// deque. Must be a power of 2.
func WithDequeCapacity(n int) Option {
	return func(c *Config) { c.DequeCapacity = n }
}

// WithPanicHandler sets the handler invoked when a fire-and-forget
// task panics.
func WithPanicHandler(fn func(interface{})) Option {
	return func(c *Config) { c.PanicHandler = fn }
}

// WithWorkerHooks sets callbacks invoked by each worker goroutine as it
// starts and stops. Either may be nil.
func WithWorkerHooks(onStart, onStop func(workerID int)) Option {
	return func(c *Config) {
		c.OnWorkerStart = onStart
		c.OnWorkerStop = onStop
	}
}
