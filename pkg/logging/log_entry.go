package logging

// LogEntry represents a structured log record emitted during a search run.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Search-specific fields
	RunID     string // Identifier of the engine run emitting the record
	Iteration int    // Iteration counter, 0 when outside the iteration loop

	// General structured data
	Fields map[string]interface{}
}
