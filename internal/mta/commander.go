package mta

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Commander abstracts process execution so the MTA CLI can be replaced in tests
type Commander interface {
	LookPath(name string) (string, error)
	// Run executes name with args in dir. Combined stdout and stderr is
	// passed to onLine line by line while the process runs.
	Run(ctx context.Context, name string, args []string, dir string, onLine func(string)) error
}

// RealCommander implements Commander using actual system commands
type RealCommander struct{}

// NewRealCommander creates a real commander
func NewRealCommander() Commander {
	return &RealCommander{}
}

// LookPath checks if a command exists
func (r *RealCommander) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes a command and streams its output
func (r *RealCommander) Run(ctx context.Context, name string, args []string, dir string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		// drain so the process never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Wait()
	pw.Close()
	<-done
	pr.Close()
	if err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
