package log

// Logger receives capture events from the client stack. Implementations
// must be safe for concurrent use and must not block: Log is called
// from transport read loops.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards every event. The zero value is ready to use;
// the client substitutes it when capture is disabled.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
