package gdk

// Logger receives debug output from the backend session, the resolver and
// the signing backends. Secrets are never passed to it.
type Logger interface {
	Debug(format string, args ...any)
	DebugFields(msg string, fields map[string]any)
}

// NopLogger discards all output.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// DebugFields implements Logger.
func (NopLogger) DebugFields(string, map[string]any) {}
