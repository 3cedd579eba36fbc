package spec

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the logger that reports instance tree builds and
// layout failures. Nothing is logged until SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger sets the layout logger. Call it before the first Build.
func SetLogger(l *zap.Logger) {
	logger = l
}
