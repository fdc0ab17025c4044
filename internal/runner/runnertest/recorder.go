// Package runnertest provides a recording executor for testing workflows
// built on the runner package without launching real processes.
package runnertest

import (
	"io"
	"strings"

	"macops/internal/runner"
)

// Call is one recorded invocation.
type Call struct {
	Argv    []string
	Options runner.Options
	Capture bool // true for Output, false for Run
}

// Line returns the space-joined argv.
func (c Call) Line() string { return strings.Join(c.Argv, " ") }

// Recorder records commands and answers them from canned results keyed by the
// space-joined argv. Unknown commands succeed with empty output.
type Recorder struct {
	Calls []Call

	ExitCodes    map[string]int    // non-zero exit per command line
	Outputs      map[string]string // stdout returned by Output
	Stdout       map[string]string // written to the Stdout option on Run
	LaunchErrors map[string]error  // commands that fail to start
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		ExitCodes:    map[string]int{},
		Outputs:      map[string]string{},
		Stdout:       map[string]string{},
		LaunchErrors: map[string]error{},
	}
}

// Run mirrors runner.Runner.Run's error contract.
func (r *Recorder) Run(argv []string, opts ...runner.Option) error {
	o := runner.Apply(opts...)
	r.Calls = append(r.Calls, Call{Argv: argv, Options: o})

	line := strings.Join(argv, " ")
	if err, ok := r.LaunchErrors[line]; ok {
		return &runner.LaunchError{Argv: argv, Err: err}
	}
	if out, ok := r.Stdout[line]; ok && o.Stdout != nil {
		_, _ = io.WriteString(o.Stdout, out)
	}

	code := r.ExitCodes[line]
	if code == 0 || o.IgnoreErrors {
		return nil
	}
	return &runner.FatalError{Code: code, Argv: argv}
}

// Output mirrors runner.Runner.Output.
func (r *Recorder) Output(argv []string) (string, int, error) {
	r.Calls = append(r.Calls, Call{Argv: argv, Capture: true})

	line := strings.Join(argv, " ")
	if err, ok := r.LaunchErrors[line]; ok {
		return "", 0, &runner.LaunchError{Argv: argv, Err: err}
	}
	return r.Outputs[line], r.ExitCodes[line], nil
}

// Lines returns the command line of every recorded Run call, in order.
func (r *Recorder) Lines() []string {
	var lines []string
	for _, c := range r.Calls {
		if !c.Capture {
			lines = append(lines, c.Line())
		}
	}
	return lines
}

// Find returns the first recorded call with the given command line.
func (r *Recorder) Find(line string) (Call, bool) {
	for _, c := range r.Calls {
		if c.Line() == line {
			return c, true
		}
	}
	return Call{}, false
}
