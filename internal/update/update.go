// Package update runs the routine Astral uv and Homebrew maintenance sequence.
package update

import (
	"macops/internal/logger"
	"macops/internal/runner"
)

// Executor runs commands. *runner.Runner satisfies it.
type Executor interface {
	Run(argv []string, opts ...runner.Option) error
}

// Step is one announced command. Advisory steps only warn on failure.
type Step struct {
	Title    string
	Argv     []string
	Advisory bool
}

// UvSteps updates uv itself and every uv-managed tool.
func UvSteps() []Step {
	return []Step{
		{Title: "UPDATE UV", Argv: []string{"uv", "self", "update"}},
		{Title: "UPDATE UV TOOLS", Argv: []string{"uv", "tool", "update", "--all"}},
	}
}

// BrewSteps upgrades Homebrew installs and dumps them to brewfile.
func BrewSteps(brewfile string) []Step {
	return []Step{
		{Title: "HOMEBREW INSTALLED PACKAGES/CASKS (brew list)", Argv: []string{"brew", "list"}},
		{Title: "HOMEBREW OUTDATED PACKAGES/CASKS (brew outdated)", Argv: []string{"brew", "outdated"}},
		{Title: "AUTOREMOVE UNUSED PACKAGE DEPENDENCIES (brew autoremove)", Argv: []string{"brew", "autoremove"}},
		{Title: "UPDATE HOMEBREW PACKAGES/CASKS (brew update)", Argv: []string{"brew", "update"}},
		{Title: "UPGRADE HOMEBREW PACKAGES/CASKS (brew upgrade --greedy)", Argv: []string{"brew", "upgrade", "--greedy"}},
		// brew doctor exits non-zero for mere warnings.
		{Title: "CHECK HOMEBREW INSTALLS (brew doctor)", Argv: []string{"brew", "doctor"}, Advisory: true},
		{Title: "CLEANUP HOMEBREW (brew cleanup)", Argv: []string{"brew", "cleanup"}},
		{
			Title: "DUMP HOMEBREW INSTALLS TO " + brewfile + " (brew bundle dump)",
			Argv:  []string{"brew", "bundle", "dump", "--force", "--file=" + brewfile},
		},
		{Title: "HOMEBREW MANAGED SERVICES (brew services list)", Argv: []string{"brew", "services", "list"}},
	}
}

// Options selects which groups run.
type Options struct {
	Brewfile string
	SkipUv   bool
	SkipBrew bool
}

// Updater runs the maintenance sequence, stopping at the first fatal step.
type Updater struct {
	Exec Executor
	Log  *logger.Logger
}

// Run executes the uv group, then the Homebrew group.
func (u *Updater) Run(opts Options) error {
	u.Log.Info("Starting uv and brew update.")

	if opts.SkipUv {
		u.Log.Info("Skipping uv update.")
	} else {
		u.Log.Info("UPDATE ASTRAL UV AND UV TOOL (ALL)")
		if err := u.RunSteps(UvSteps()); err != nil {
			return err
		}
	}

	if opts.SkipBrew {
		u.Log.Info("Skipping Homebrew update.")
	} else {
		u.Log.Info("UPDATE/UPGRADE HOMEBREW PACKAGES/CASKS")
		if err := u.RunSteps(BrewSteps(opts.Brewfile)); err != nil {
			return err
		}
	}

	u.Log.Info("Update complete.")
	return nil
}

// RunSteps announces and runs each step in order.
func (u *Updater) RunSteps(steps []Step) error {
	for _, s := range steps {
		u.Log.Info(s.Title)

		var opts []runner.Option
		if s.Advisory {
			opts = append(opts, runner.IgnoreErrors())
		}
		if err := u.Exec.Run(s.Argv, opts...); err != nil {
			return err
		}
	}
	return nil
}
