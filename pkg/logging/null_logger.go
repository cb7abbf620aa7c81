package logging

// NullLogger drops every entry. Components fall back to it when
// no Logger is configured, see OrNull.
type NullLogger struct{}

func (NullLogger) Info(string, ...Field)  {}
func (NullLogger) Warn(string, ...Field)  {}
func (NullLogger) Error(string, ...Field) {}
func (NullLogger) Debug(string, ...Field) {}

func (n NullLogger) WithFields(...Field) Logger { return n }

func (NullLogger) Close() error { return nil }
