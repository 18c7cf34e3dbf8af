package audioio

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	logMu  sync.RWMutex
	logger = zerolog.Nop()
)

// SetLogger routes this package's diagnostic output to l. The default
// logger discards everything.
func SetLogger(l zerolog.Logger) {
	logMu.Lock()
	logger = l
	logMu.Unlock()
}

func pkgLog() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}
