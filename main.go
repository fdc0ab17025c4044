package main

import (
	"macops/cmd" // CLI commands and the single exit point
)

// main is the program entry point.
// It delegates to cmd.Execute(), which parses arguments, runs the chosen
// command and exits with its status.
//
// macops bundles the maintenance chores of a Homebrew-based macOS machine:
//   - pg-upgrade moves PostgreSQL to a new major version (pg_dumpall backup,
//     initdb, pg_upgrade, brew service switch)
//   - update runs the Astral uv and Homebrew update/upgrade/cleanup sequence and
//     dumps the installed packages to a Brewfile
//   - links symlinks dotfiles from a checkout (or an unpacked bundle) into $HOME
//
// Every command logs to the console and to <log_dir>/<command>.log. External
// commands are run through internal/runner: a non-zero exit stops the command
// and becomes the process exit status, except for steps marked advisory,
// which only log a warning.
func main() {
	cmd.Execute()
}
