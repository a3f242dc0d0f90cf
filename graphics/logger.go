package graphics

import (
	"log/slog"
	"sync/atomic"
)

// LevelTrace is below debug; per-frame and per-tick timings use it.
const LevelTrace = slog.LevelDebug - 4

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.Default())
}

// SetLogger replaces the logger used by every tiledl package. By default
// records go to slog.Default, which writes through the standard log package.
// Passing nil restores that default. Safe for concurrent use.
//
// Levels:
//   - LevelTrace: frame and tick timings
//   - slog.LevelDebug: loop start/stop, thread ids
//   - slog.LevelInfo: window, renderer and context creation
//   - slog.LevelWarn: refcount misuse, settings that failed to apply
//   - slog.LevelError: backend failures, thread-affinity violations
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
