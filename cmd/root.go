package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"macops/internal/config"
	"macops/internal/logger"
	"macops/internal/runner"
)

// executor is what the workflows need from a command runner.
// *runner.Runner satisfies it.
type executor interface {
	Run(argv []string, opts ...runner.Option) error
	Output(argv []string) (string, int, error)
}

// rootOptions carries the global flags and everything the root command
// prepares for its subcommands before they run.
type rootOptions struct {
	configPath string
	debug      bool
	noColor    bool
	logDir     string

	stdout  io.Writer
	stderr  io.Writer
	newExec func(*logger.Logger) executor

	home     string
	cfg      config.Config
	registry *logger.Registry
	log      *logger.Logger // logger of the running subcommand, once created
}

func newRootOptions() *rootOptions {
	return &rootOptions{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		newExec: func(l *logger.Logger) executor { return runner.New(l) },
	}
}

// newRootCmd builds the `macops` command tree.
func newRootCmd(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "macops",
		Short: "macOS maintenance tasks: PostgreSQL upgrades, uv/Homebrew updates, dotfile links",

		// Errors are reported once by Execute after the log files are known.
		SilenceErrors: true,
		SilenceUsage:  true,

		// PersistentPreRunE loads the config and sets up the logger registry
		// before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.prepare()
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "macops.yaml", "Path to configuration file")
	root.PersistentFlags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&o.noColor, "no-color", false, "Disable colored console output")
	root.PersistentFlags().StringVar(&o.logDir, "log-dir", "", "Directory for log files (overrides log_dir in the config)")

	root.AddCommand(newPgUpgradeCmd(o))
	root.AddCommand(newUpdateCmd(o))
	root.AddCommand(newLinksCmd(o))
	return root
}

func (o *rootOptions) prepare() error {
	if o.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		o.home = home
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logDir != "" {
		cfg.LogDir = o.logDir
	}
	o.cfg = cfg.Resolve(o.home)
	o.registry = logger.NewRegistry(logger.WithStdout(o.stdout))
	return nil
}

// level is the threshold given to every command logger.
func (o *rootOptions) level() logger.Level {
	if o.debug {
		return logger.DebugLevel
	}
	return logger.InfoLevel
}

// colorize reports whether console level tokens get colored. color.NoColor
// already covers NO_COLOR and a non-terminal stdout.
func (o *rootOptions) colorize() bool {
	return !o.noColor && !color.NoColor
}

// commandLogger creates the logger for a subcommand, writing to the console
// and to <log dir>/<name>.log.
func (o *rootOptions) commandLogger(name string) (*logger.Logger, error) {
	path := filepath.Join(o.cfg.LogDir, name+".log")
	log, err := o.registry.ConsoleAndFile(name, path, o.level(), o.colorize())
	if err != nil {
		return nil, err
	}
	o.log = log
	log.Info("Logging to %s", path)
	return log, nil
}

// finish reports err, closes the log files and returns the process exit code.
// A FatalError was already logged by the runner when the command failed.
func (o *rootOptions) finish(err error) int {
	var (
		fatal  *runner.FatalError
		launch *runner.LaunchError
	)
	switch {
	case err == nil, errors.As(err, &fatal):
	case o.log != nil && errors.As(err, &launch):
		o.log.Exception(err, "Could not start %s", launch.Argv[0])
	case o.log != nil:
		o.log.Error("%v", err)
	default:
		_, _ = color.New(color.FgRed).Fprintf(o.stderr, "Error: %v\n", err)
	}

	if o.registry != nil {
		if cerr := o.registry.Close(); cerr != nil {
			_, _ = fmt.Fprintf(o.stderr, "close log files: %v\n", cerr)
		}
	}
	return runner.ExitCode(err)
}

// Execute runs the CLI and exits the process with the resulting status.
// It is the only place macops terminates.
func Execute() {
	o := newRootOptions()
	err := newRootCmd(o).Execute()
	os.Exit(o.finish(err))
}
