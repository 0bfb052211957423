package goarg

import (
	"log/slog"
	"sync"
)

var (
	loggerMu      sync.RWMutex
	currentLogger = slog.New(slog.DiscardHandler)
)

// SetLogger installs the structured logger used for scan, cache and bind
// diagnostics. nil restores the default, which discards everything.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerMu.Lock()
	currentLogger = l
	loggerMu.Unlock()
}

// Logger returns the current logger.
func Logger() *slog.Logger { return logger() }

func logger() *slog.Logger {
	loggerMu.RLock()
	l := currentLogger
	loggerMu.RUnlock()
	return l
}
