package watrix

// MaxDepth is the largest number of levels a WaveletMatrix can have.
const MaxDepth = 64

type options struct {
	alphabetSize uint64
	maxDepth     uint64
	logger       *Logger
}

func defaultOptions() options {
	return options{
		maxDepth: MaxDepth,
		logger:   NoopLogger(),
	}
}

// Option configures a Builder.
type Option func(*options)

// WithAlphabetSize fixes the alphabet to [0, n).
// Without it the alphabet is derived as max(values)+1.
func WithAlphabetSize(n uint64) Option {
	return func(o *options) {
		o.alphabetSize = n
	}
}

// WithMaxDepth limits the number of levels (bits per symbol).
// Values outside [1, MaxDepth] keep the default of MaxDepth.
func WithMaxDepth(depth uint64) Option {
	return func(o *options) {
		if depth == 0 || depth > MaxDepth {
			depth = MaxDepth
		}
		o.maxDepth = depth
	}
}

// WithLogger sets the logger used while building.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
