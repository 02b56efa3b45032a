package gostreams

// ErrorMode determines when ConcatMapEager surfaces accumulated failures.
type ErrorMode int

const (
	// ErrorModeImmediate terminates at the first observed failure from any
	// source, discarding buffered elements that have not been emitted yet.
	ErrorModeImmediate ErrorMode = iota

	// ErrorModeBoundary lets the nested stream currently being drained run
	// to exhaustion, then terminates with the accumulated failures,
	// cancelling the remaining nested streams. No new outer elements are
	// admitted after the first failure.
	ErrorModeBoundary

	// ErrorModeEnd keeps admitting outer elements and drains every nested
	// stream fully; the accumulated failures terminate the stream only
	// after everything else has finished.
	ErrorModeEnd
)

// defaultPrefetch is the per-nested-stream buffer capacity used when
// WithPrefetch is not given.
const defaultPrefetch = 128

type config struct {
	maxConcurrency uint64
	prefetch       int
	errorMode      ErrorMode
}

// Option configures ConcatMapEager.
type Option func(*config)

func defaultConfig() config {
	return config{
		maxConcurrency: Unbounded,
		prefetch:       defaultPrefetch,
		errorMode:      ErrorModeImmediate,
	}
}

// WithMaxConcurrency limits the number of nested streams subscribed to at
// once. n must be at least 1. The default is Unbounded.
func WithMaxConcurrency(n uint64) Option {
	return func(cfg *config) {
		cfg.maxConcurrency = n
	}
}

// WithPrefetch sets the look-ahead buffer capacity of each nested stream,
// which is also the credit window granted to its producer. n must be at
// least 1. The default is 128.
func WithPrefetch(n int) Option {
	return func(cfg *config) {
		cfg.prefetch = n
	}
}

// WithErrorMode sets the failure propagation mode.
// The default is ErrorModeImmediate.
func WithErrorMode(mode ErrorMode) Option {
	return func(cfg *config) {
		cfg.errorMode = mode
	}
}
