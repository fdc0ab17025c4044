// Package brew wraps the handful of Homebrew queries the workflows need.
package brew

import (
	"macops/internal/logger"
	"macops/internal/runner"
)

// Executor runs commands. *runner.Runner satisfies it.
type Executor interface {
	Run(argv []string, opts ...runner.Option) error
	Output(argv []string) (string, int, error)
}

// Client issues brew commands through an Executor.
type Client struct {
	exec Executor
	log  *logger.Logger
}

// New returns a Client.
func New(exec Executor, log *logger.Logger) *Client {
	return &Client{exec: exec, log: log}
}

// Prefix returns the Homebrew installation prefix (`brew --prefix`).
func (c *Client) Prefix() (string, error) {
	argv := []string{"brew", "--prefix"}
	out, code, err := c.exec.Output(argv)
	if err != nil {
		return "", err
	}
	if code != 0 || out == "" {
		c.log.Error("Could not determine Homebrew prefix (exit code %d)", code)
		if code == 0 {
			code = 1
		}
		return "", &runner.FatalError{Code: code, Argv: argv}
	}
	c.log.Info("Homebrew prefix: %s", out)
	return out, nil
}

// IsInstalled reports whether formula is installed.
func (c *Client) IsInstalled(formula string) (bool, error) {
	_, code, err := c.exec.Output([]string{"brew", "list", "--versions", formula})
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

// EnsureInstalled installs formula unless it is already present.
func (c *Client) EnsureInstalled(formula string) error {
	c.log.Info("Ensuring %s is installed via Homebrew...", formula)

	ok, err := c.IsInstalled(formula)
	if err != nil {
		return err
	}
	if ok {
		c.log.Info("%s already installed.", formula)
		return nil
	}

	c.log.Info("%s not installed. Installing with Homebrew...", formula)
	return c.exec.Run([]string{"brew", "install", formula})
}

// StartService runs `brew services start formula`. Starting a running service is a no-op.
func (c *Client) StartService(formula string) error {
	return c.exec.Run([]string{"brew", "services", "start", formula})
}

// StopService runs `brew services stop formula`.
func (c *Client) StopService(formula string) error {
	return c.exec.Run([]string{"brew", "services", "stop", formula})
}
