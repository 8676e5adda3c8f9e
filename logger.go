package watrix

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with consistent field names for build and
// persistence events. Queries never log.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// LogBuild logs the outcome of a matrix build.
func (l *Logger) LogBuild(num, dim, depth uint64, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("wavelet matrix build failed",
			"num", num,
			"dim", dim,
			"depth", depth,
			"error", err,
		)
		return
	}
	l.Debug("wavelet matrix built",
		"num", num,
		"dim", dim,
		"depth", depth,
		"elapsed", elapsed,
	)
}

// LogSave logs a save to disk.
func (l *Logger) LogSave(path string, c Compression, rawBytes, storedBytes int, err error) {
	if err != nil {
		l.Error("save failed",
			"path", path,
			"compression", c,
			"error", err,
		)
		return
	}
	l.Info("saved wavelet matrix",
		"path", path,
		"compression", c,
		"raw_bytes", rawBytes,
		"stored_bytes", storedBytes,
	)
}

// LogLoad logs a load from disk.
func (l *Logger) LogLoad(path string, c Compression, storedBytes int, err error) {
	if err != nil {
		l.Error("load failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.Info("loaded wavelet matrix",
		"path", path,
		"compression", c,
		"stored_bytes", storedBytes,
	)
}
