package logger

import corelogger "github.com/kilianp07/epf/core/logger"

// Logger is the core logging interface, re-exported for wiring code.
type Logger = corelogger.Logger

// New returns a zerolog backed Logger tagged with component. Output format
// follows Configure, or APP_ENV=dev for a console writer when Configure was
// never called with an explicit format.
func New(component string) Logger {
	return NewZerologLogger(component)
}
