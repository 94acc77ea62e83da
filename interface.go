package logging

// Logger is the structured logging surface handed to application code.
// Implementations are safe for concurrent use, and every method tolerates an
// uninitialized or released backend by degrading to a no-op.
type Logger interface {
	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	FatalWith() LogEvent

	// With creates a child logger with pre-populated fields that are
	// included in all its subsequent records.
	// Example: req := logger.With().Str("request_id", id).Logger()
	With() LogContext

	// Span starts a named unit of work whose lifecycle transitions may be
	// emitted as log records, per the configured span-event selection.
	Span(name string) *Span
}
