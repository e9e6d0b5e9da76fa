package config

// Logger provides structured logging for config operations. It lets
// callers plug in their own logging implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing. It is the
// default when no logger is provided.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

func defaultLogger() Logger {
	return &noopLogger{}
}
