package reader

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the logger for PC/SC reader selection and sector
// reads. Failed sector authentications are logged at warn level.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger routes reader diagnostics to l. The default is zap.NewNop.
func SetLogger(l *zap.Logger) {
	logger = l
}
