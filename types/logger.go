package types

import (
	"log"
	"os"
)

// Logger is the logging interface used throughout wasmflow: a minimal
// Printf-only contract so any structured logging library (zap, logrus,
// zerolog) can be adapted with a one-method shim instead of wasmflow
// depending on one directly.
type Logger interface {
	Printf(format string, v ...any)
}

// defaultLogger adapts the standard library logger to the Logger interface.
type defaultLogger struct {
	l *log.Logger
}

// DefaultLogger returns the logger used when a Config does not supply one.
func DefaultLogger() Logger {
	return &defaultLogger{l: log.New(os.Stderr, "wasmflow: ", log.LstdFlags)}
}

func (d *defaultLogger) Printf(format string, v ...any) {
	d.l.Printf(format, v...)
}
