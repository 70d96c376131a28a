package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// UILogger prints progress for the CLI. While a status sink is attached
// (e.g. a spinner is running), info lines update the sink instead of being
// printed.
type UILogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	sink    func(string)
}

// NewUILogger creates a logger printing to stdout
func NewUILogger(verbose bool) *UILogger {
	return NewWriterLogger(os.Stdout, verbose)
}

// NewWriterLogger creates a logger printing to w
func NewWriterLogger(w io.Writer, verbose bool) *UILogger {
	return &UILogger{out: w, verbose: verbose}
}

// IsInteractive reports whether stdout is attached to a terminal.
// Used to decide when to use interactive UI elements like spinners.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Verbose reports whether debug output is enabled
func (l *UILogger) Verbose() bool {
	return l.verbose
}

// AttachSink routes info lines to fn until DetachSink is called
func (l *UILogger) AttachSink(fn func(string)) {
	l.mu.Lock()
	l.sink = fn
	l.mu.Unlock()
}

// DetachSink restores printing of info lines
func (l *UILogger) DetachSink() {
	l.AttachSink(nil)
}

func (l *UILogger) Logf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink != nil {
		text := fmt.Sprintf(format, args...)
		text = strings.TrimSuffix(text, "\n")
		text = strings.ReplaceAll(text, "\n", " ")
		l.sink(text)
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

func (l *UILogger) Log(msg string) {
	l.Logf("%s\n", msg)
}

func (l *UILogger) Debugf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, "DEBUG "+msg)
}
