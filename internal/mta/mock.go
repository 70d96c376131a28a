package mta

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommander implements Commander for testing
type MockCommander struct {
	mu            sync.Mutex
	Commands      map[string]bool     // which commands exist
	Responses     map[string][]string // command pattern -> output lines
	Errors        map[string]error    // command pattern -> error
	RecordedCalls []RecordedCall      // all calls made

	// OnRun is invoked for every call, e.g. to write CSV output files
	OnRun func(call RecordedCall) error
}

// RecordedCall captures a command invocation
type RecordedCall struct {
	Name string
	Args []string
	Dir  string
}

// Flag returns the value following flag in Args
func (c RecordedCall) Flag(flag string) string {
	for i, a := range c.Args {
		if a == flag && i+1 < len(c.Args) {
			return c.Args[i+1]
		}
	}
	return ""
}

// NewMockCommander creates a mock commander
func NewMockCommander() *MockCommander {
	return &MockCommander{
		Commands:  make(map[string]bool),
		Responses: make(map[string][]string),
		Errors:    make(map[string]error),
	}
}

// LookPath checks if a command exists in the mock
func (m *MockCommander) LookPath(name string) (string, error) {
	if m.Commands[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// Calls returns a copy of the recorded calls
func (m *MockCommander) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.RecordedCalls...)
}

// Run records the call and replays the mocked response
func (m *MockCommander) Run(ctx context.Context, name string, args []string, dir string, onLine func(string)) error {
	call := RecordedCall{Name: name, Args: append([]string(nil), args...), Dir: dir}
	m.mu.Lock()
	m.RecordedCalls = append(m.RecordedCalls, call)
	m.mu.Unlock()

	// Build command key for lookup
	key := name + " " + strings.Join(args, " ")

	if lines := m.response(key); onLine != nil {
		for _, l := range lines {
			onLine(l)
		}
	}
	if err := m.err(key); err != nil {
		return err
	}
	if m.OnRun != nil {
		return m.OnRun(call)
	}
	return nil
}

func (m *MockCommander) response(key string) []string {
	if resp, ok := m.Responses[key]; ok {
		return resp
	}
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) {
			return resp
		}
	}
	return nil
}

func (m *MockCommander) err(key string) error {
	if err, ok := m.Errors[key]; ok {
		return err
	}
	for pattern, err := range m.Errors {
		if strings.HasPrefix(key, pattern) {
			return err
		}
	}
	return nil
}
