// Package runner executes external commands for the operator workflows.
//
// Every invocation is traced at INFO before it starts. A non-zero exit is
// either reported as a *FatalError (the default, fail-fast) or downgraded to a
// WARNING when the caller marks the command ignorable. A command that cannot
// be started at all surfaces as a *LaunchError.
package runner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"macops/internal/logger"
)

// Runner runs commands without a shell, logging through log.
type Runner struct {
	log *logger.Logger

	// Standard streams handed to child processes unless a Run option overrides them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner that inherits the parent's standard streams.
func New(log *logger.Logger) *Runner {
	return &Runner{log: log, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Options holds the per-call settings assembled from Option values.
type Options struct {
	IgnoreErrors bool
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
}

// Option adjusts a single Run call.
type Option func(*Options)

// Apply folds opts into an Options value. Executors other than Runner use it
// to honour the same options.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IgnoreErrors downgrades a non-zero exit to a WARNING and lets the caller continue.
func IgnoreErrors() Option {
	return func(o *Options) { o.IgnoreErrors = true }
}

// WithStdout redirects the child's standard output, e.g. into a backup file.
func WithStdout(w io.Writer) Option {
	return func(o *Options) { o.Stdout = w }
}

// WithStderr redirects the child's standard error.
func WithStderr(w io.Writer) Option {
	return func(o *Options) { o.Stderr = w }
}

// WithStdin replaces the child's standard input.
func WithStdin(r io.Reader) Option {
	return func(o *Options) { o.Stdin = r }
}

// Run executes argv and blocks until it exits.
//
// The space-joined command line is logged at INFO first; it is a trace, not a
// re-executable string. On a non-zero exit Run logs at ERROR and returns a
// *FatalError, or logs at WARNING and returns nil when IgnoreErrors is given.
// Failure to start the process returns a *LaunchError.
func (r *Runner) Run(argv []string, opts ...Option) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	c := Options{Stdin: r.Stdin, Stdout: r.Stdout, Stderr: r.Stderr}
	for _, opt := range opts {
		opt(&c)
	}

	line := strings.Join(argv, " ")
	r.log.Info("Running: %s", line)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	code, err := wait(cmd)
	if err != nil {
		return &LaunchError{Argv: argv, Err: err}
	}
	if code == 0 {
		return nil
	}

	if c.IgnoreErrors {
		r.log.Warning("Command exited with %d: %s", code, line)
		return nil
	}
	r.log.Error("Command failed with exit code %d: %s", code, line)
	return &FatalError{Code: code, Argv: argv}
}

// Output runs argv with stdout captured and stderr discarded, returning the
// trimmed output and exit code. Only a launch failure is returned as an error;
// interpreting the exit code is left to the caller.
func (r *Runner) Output(argv []string) (string, int, error) {
	if len(argv) == 0 {
		return "", 0, ErrEmptyCommand
	}
	r.log.Debug("Capturing: %s", strings.Join(argv, " "))

	var out bytes.Buffer
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = &out

	code, err := wait(cmd)
	if err != nil {
		return "", 0, &LaunchError{Argv: argv, Err: err}
	}
	return strings.TrimSpace(out.String()), code, nil
}

// wait runs cmd and splits "ran and exited with code" from "could not run".
func wait(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, err
	}

	if code := exitErr.ExitCode(); code >= 0 {
		return code, nil
	}
	// Killed by a signal: report it the way a shell would.
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return 1, nil
}
