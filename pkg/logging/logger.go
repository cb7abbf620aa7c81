// Package logging is the structured logging seam of the engine.
//
// Components accept the small Logger interface and default to
// NullLogger. ZapLogger is the production backend. RedactingLogger
// and TeeLogger decorate any Logger.
package logging

// Logger is a leveled, structured logger.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)

	// WithFields returns a child that attaches fields to every
	// entry it writes.
	WithFields(fields ...Field) Logger

	// Close flushes buffered entries.
	Close() error
}

// Field is one key-value pair of structured context.
type Field struct {
	Key   string
	Value any
}

// OrNull returns l, or NullLogger when l is nil.
func OrNull(l Logger) Logger {
	if l == nil {
		return NullLogger{}
	}
	return l
}
