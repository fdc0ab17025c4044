package cmd

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"macops/internal/logger"
	"macops/internal/runner"
	"macops/internal/runner/runnertest"
)

type harness struct {
	o      *rootOptions
	rec    *runnertest.Recorder
	stdout bytes.Buffer
	stderr bytes.Buffer
	home    string
	logDir  string
	cfgPath string
}

// newHarness prepares a root command whose commands record instead of run and
// whose config file lives in a temp directory.
func newHarness(t *testing.T, configBody string) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		rec:     runnertest.New(),
		home:    filepath.Join(dir, "home"),
		logDir:  filepath.Join(dir, "logs"),
		cfgPath: filepath.Join(dir, "macops.yaml"),
	}
	if err := os.MkdirAll(h.home, 0o755); err != nil {
		t.Fatal(err)
	}

	body := "log_dir: " + h.logDir + "\n" + configBody
	if err := os.WriteFile(h.cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	h.o = newRootOptions()
	h.o.stdout = &h.stdout
	h.o.stderr = &h.stderr
	h.o.home = h.home
	h.o.newExec = func(*logger.Logger) executor { return h.rec }
	return h
}

// run executes args and returns the exit code Execute would use. Flag
// defaults are applied when the command tree is built, so the config path is
// always passed on the command line.
func (h *harness) run(args ...string) int {
	root := newRootCmd(h.o)
	root.SetArgs(append([]string{"--config", h.cfgPath, "--no-color"}, args...))
	root.SetOut(&h.stdout)
	root.SetErr(&h.stderr)
	return h.o.finish(root.Execute())
}

func (h *harness) logFile(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(h.logDir, name+".log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(raw)
}

func TestLinks(t *testing.T) {
	h := newHarness(t, "dotfiles:\n  base: ~/dotfiles\n  links:\n    - {target: .gitconfig, source: git/.gitconfig}\n")
	base := filepath.Join(h.home, "dotfiles")
	if err := os.MkdirAll(filepath.Join(base, "git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "git", ".gitconfig"), []byte("[user]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := h.run("links"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}

	dst := filepath.Join(h.home, ".gitconfig")
	if got, err := os.Readlink(dst); err != nil || got != filepath.Join(base, "git", ".gitconfig") {
		t.Fatalf("readlink %s = %q, %v", dst, got, err)
	}

	log := h.logFile(t, "symlinks")
	if !strings.Contains(log, "[INFO] Linking "+dst) {
		t.Fatalf("log file missing link line: %q", log)
	}
	if strings.Contains(log, "\x1b[") {
		t.Fatalf("log file must not contain color codes: %q", log)
	}
	if !strings.Contains(h.stdout.String(), "[INFO] Logging to "+filepath.Join(h.logDir, "symlinks.log")) {
		t.Fatalf("console missing log location: %q", h.stdout.String())
	}
}

func TestConfigFileIsLoaded(t *testing.T) {
	h := newHarness(t, "brewfile: ~/custom/Brewfile\n")

	if code := h.run("update", "--skip-uv"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if h.o.configPath != h.cfgPath {
		t.Fatalf("config path = %q, want %q", h.o.configPath, h.cfgPath)
	}
	if h.o.cfg.LogDir != h.logDir {
		t.Fatalf("log dir = %q, want %q", h.o.cfg.LogDir, h.logDir)
	}
	if _, err := os.Stat(filepath.Join(h.logDir, "update.log")); err != nil {
		t.Fatalf("log file not written under the configured log_dir: %v", err)
	}
	want := "brew bundle dump --force --file=" + filepath.Join(h.home, "custom", "Brewfile")
	if _, ok := h.rec.Find(want); !ok {
		t.Fatalf("missing %q in %v", want, h.rec.Lines())
	}
}

func TestPgUpgrade_LongFlags(t *testing.T) {
	h := newHarness(t, "")
	h.rec.ExitCodes["brew --prefix"] = 2

	if code := h.run("pg-upgrade", "--old-version", "16", "--new-version", "17"); code != 2 {
		t.Fatalf("exit code %d, want 2; stderr %q", code, h.stderr.String())
	}
	if !strings.Contains(h.logFile(t, "pg_upgrade"), "Starting PostgreSQL upgrade: 16 -> 17") {
		t.Fatalf("upgrade did not start")
	}
}

func TestLinks_DryRunSkipsBundle(t *testing.T) {
	h := newHarness(t, "")

	if code := h.run("links", "--dry-run", "--bundle", "~/dotfiles.tar.xz"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	want := "Dry run: not unpacking " + filepath.Join(h.home, "dotfiles.tar.xz")
	if !strings.Contains(h.stdout.String(), want) {
		t.Fatalf("missing %q in %q", want, h.stdout.String())
	}
	if _, err := os.Lstat(filepath.Join(h.home, ".zshrc")); !os.IsNotExist(err) {
		t.Fatalf("dry run created a link")
	}
}

func TestLinks_BadBundleFails(t *testing.T) {
	h := newHarness(t, "")

	if code := h.run("links", "--bundle", "dotfiles.rar"); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(h.logFile(t, "symlinks"), "[ERROR] unsupported archive format") {
		t.Fatalf("error not logged: %q", h.stdout.String())
	}
}

func TestUpdate(t *testing.T) {
	h := newHarness(t, "")

	if code := h.run("update", "--skip-uv", "--brewfile", "~/Brewfile"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	want := "brew bundle dump --force --file=" + filepath.Join(h.home, "Brewfile")
	if _, ok := h.rec.Find(want); !ok {
		t.Fatalf("missing %q in %v", want, h.rec.Lines())
	}
	if _, ok := h.rec.Find("uv self update"); ok {
		t.Fatalf("uv ran despite --skip-uv")
	}
}

func TestUpdate_PropagatesExitCode(t *testing.T) {
	h := newHarness(t, "")
	h.rec.ExitCodes["brew update"] = 42

	if code := h.run("update", "--skip-uv"); code != 42 {
		t.Fatalf("exit code %d, want 42", code)
	}
	if h.stderr.Len() != 0 {
		t.Fatalf("a failed command must not be reported twice: %q", h.stderr.String())
	}
}

func TestUpdate_DebugLevel(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run("--debug", "update", "--skip-uv", "--skip-brew"); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got := h.o.log.Level(); got != logger.DebugLevel {
		t.Fatalf("level = %s, want DEBUG", got)
	}
}

func TestPgUpgrade_RequiresBothVersions(t *testing.T) {
	h := newHarness(t, "")

	if code := h.run("pg-upgrade", "-o", "16"); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), `required flag(s) "new-version" not set`) {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
	if len(h.rec.Calls) != 0 {
		t.Fatalf("commands ran: %v", h.rec.Calls)
	}
}

func TestPgUpgrade_SameVersion(t *testing.T) {
	h := newHarness(t, "")

	if code := h.run("pg-upgrade", "-o", "17", "-n", "17"); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(h.logFile(t, "pg_upgrade"), "[ERROR] old and new PostgreSQL versions are the same") {
		t.Fatalf("error not logged: %q", h.stdout.String())
	}
}

func TestPgUpgrade_PrefixFailure(t *testing.T) {
	h := newHarness(t, "")
	h.rec.ExitCodes["brew --prefix"] = 2

	if code := h.run("pg-upgrade", "-o", "16", "-n", "17"); code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	if len(h.rec.Lines()) != 0 {
		t.Fatalf("sequence continued after prefix failure: %v", h.rec.Lines())
	}
}

func TestFinish(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		withLog    bool
		wantCode   int
		wantLog    string
		wantStderr string
	}{
		{name: "success", wantCode: 0},
		{name: "fatal", err: &runner.FatalError{Code: 5, Argv: []string{"false"}}, withLog: true, wantCode: 5},
		{
			name:     "launch",
			err:      &runner.LaunchError{Argv: []string{"pg_dumpall"}, Err: exec.ErrNotFound},
			withLog:  true,
			wantCode: 1,
			wantLog:  "[ERROR] Could not start pg_dumpall: could not run pg_dumpall",
		},
		{name: "other with logger", err: errors.New("boom"), withLog: true, wantCode: 1, wantLog: "[ERROR] boom"},
		{name: "before logger", err: errors.New("bad flag"), wantCode: 1, wantStderr: "Error: bad flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console, stderr bytes.Buffer
			o := newRootOptions()
			o.stderr = &stderr
			if tt.withLog {
				r := logger.NewRegistry(logger.WithStdout(&console))
				log, err := r.Console("finish-"+tt.name, logger.InfoLevel, false)
				if err != nil {
					t.Fatal(err)
				}
				o.registry, o.log = r, log
			}

			if got := o.finish(tt.err); got != tt.wantCode {
				t.Fatalf("finish = %d, want %d", got, tt.wantCode)
			}
			if tt.wantLog != "" && !strings.Contains(console.String(), tt.wantLog) {
				t.Fatalf("console %q missing %q", console.String(), tt.wantLog)
			}
			if tt.wantLog == "" && console.Len() != 0 {
				t.Fatalf("unexpected console output %q", console.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Fatalf("stderr %q missing %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
