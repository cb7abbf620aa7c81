package logging

import "errors"

// TeeLogger duplicates every entry to each of its targets. The
// CLI uses it to keep console output while also appending JSON
// lines to a log file.
type TeeLogger struct {
	targets []Logger
}

// NewTeeLogger returns a Logger writing to every non-nil target.
// With a single target that target is returned unchanged.
func NewTeeLogger(targets ...Logger) Logger {
	kept := make([]Logger, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	switch len(kept) {
	case 0:
		return NullLogger{}
	case 1:
		return kept[0]
	}
	return &TeeLogger{targets: kept}
}

func (t *TeeLogger) each(fn func(Logger)) {
	for _, l := range t.targets {
		fn(l)
	}
}

func (t *TeeLogger) Info(msg string, fields ...Field) {
	t.each(func(l Logger) { l.Info(msg, fields...) })
}

func (t *TeeLogger) Warn(msg string, fields ...Field) {
	t.each(func(l Logger) { l.Warn(msg, fields...) })
}

func (t *TeeLogger) Error(msg string, fields ...Field) {
	t.each(func(l Logger) { l.Error(msg, fields...) })
}

func (t *TeeLogger) Debug(msg string, fields ...Field) {
	t.each(func(l Logger) { l.Debug(msg, fields...) })
}

// WithFields derives a child from each target.
func (t *TeeLogger) WithFields(fields ...Field) Logger {
	children := make([]Logger, len(t.targets))
	for i, l := range t.targets {
		children[i] = l.WithFields(fields...)
	}
	return &TeeLogger{targets: children}
}

// Close closes every target and joins their errors.
func (t *TeeLogger) Close() error {
	var errs []error
	t.each(func(l Logger) {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
