package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCommand is returned when Run or Output is given no argv.
var ErrEmptyCommand = errors.New("empty command")

// FatalError reports a command that ran and exited non-zero without being
// marked ignorable. The composition root turns it into a process exit with Code.
type FatalError struct {
	Code int
	Argv []string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.Code, strings.Join(e.Argv, " "))
}

// LaunchError reports a command that could not be started at all, e.g. the
// executable is missing or not permitted. It is never conflated with a
// non-zero exit.
type LaunchError struct {
	Argv []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not run %s: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit status: 0 for nil, the child's code for
// a FatalError and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return fatal.Code
	}
	return 1
}
