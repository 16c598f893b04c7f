package drove

// Config contains all configuration options for the pool.
type Config struct {
	// NumWorkers is the number of worker goroutines.
	// If 0, defaults to runtime.NumCPU().
	NumWorkers int

	// DequeCapacity is the initial capacity of each worker's local
	// deque. Must be a power of 2. If 0, defaults to
	// DefaultDequeCapacity. Deques grow on demand, so this only sets
	// the starting ring size.
	DequeCapacity int

	// PanicHandler is called with the recovered value when a task
	// submitted through (*Pool).Submit panics. Tasks submitted through
	// the package-level Submit deliver panics to their Future instead.
	// If nil, such panics are swallowed after recovery.
	PanicHandler func(interface{})

	// OnWorkerStart is called by each worker goroutine as it starts.
	// Useful for initialization, logging, or tracing.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called by each worker goroutine as it exits.
	OnWorkerStop func(workerID int)
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() Config {
	return Config{
		NumWorkers:    0, // resolved to runtime.NumCPU()
		DequeCapacity: DefaultDequeCapacity,
	}
}

// validate checks the configuration and returns an error if invalid.
func (c *Config) validate() error {
	if c.NumWorkers < 0 {
		return errInvalidConfig("NumWorkers must be >= 0")
	}

	if c.DequeCapacity < 0 {
		return errInvalidConfig("DequeCapacity must be >= 0")
	}

	if c.DequeCapacity > 0 && !isPowerOfTwo(c.DequeCapacity) {
		return errInvalidConfig("DequeCapacity must be a power of 2")
	}

	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
