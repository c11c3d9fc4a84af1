// Package logger provides structured logging for docstore.
package logger

import "context"

// Logger is the structured logging interface used throughout the module.
// Each method takes a message followed by key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a child logger whose entries all carry the given
	// key-value pairs.
	With(args ...any) Logger

	// WithContext returns a child logger enriched with request-scoped
	// fields found in ctx.
	WithContext(ctx context.Context) Logger
}

// NewNop returns a logger that discards everything. Useful as a default and
// in tests.
func NewNop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger {
	return n
}
func (n nopLogger) WithContext(context.Context) Logger {
	return n
}
