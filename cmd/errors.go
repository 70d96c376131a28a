package cmd

import (
	"errors"
	"fmt"

	"github.com/getlawrence/qmaid/internal/analyzer"
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var exitCodes = []struct {
	err  error
	code int
}{
	{analyzer.ErrMissingArguments, 255},
	{analyzer.ErrProjectNotFound, 1},
	{analyzer.ErrMavenRepoNotFound, 2},
	{analyzer.ErrEntryPointNotFound, 3},
	{analyzer.ErrPomNotFound, 4},
	{analyzer.ErrProjectModel, 5},
}

// withExitCode wraps analysis validation errors into an ExitError
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	for _, ec := range exitCodes {
		if errors.Is(err, ec.err) {
			return &ExitError{Code: ec.code, Err: err}
		}
	}
	return err
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
