package logger

type Logger interface {
	Logf(format string, args ...interface{})
	Log(msg string)
	// Debugf is only printed when verbose output is enabled
	Debugf(format string, args ...interface{})
}

// Nop discards everything. Used by tests and by non-interactive callers that
// only want the final result.
type Nop struct{}

func (Nop) Logf(format string, args ...interface{})   {}
func (Nop) Log(msg string)                            {}
func (Nop) Debugf(format string, args ...interface{}) {}
