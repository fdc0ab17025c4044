package update

import (
	"bytes"
	"strings"
	"testing"

	"macops/internal/logger"
	"macops/internal/runner"
	"macops/internal/runner/runnertest"
)

func newUpdater(t *testing.T) (*Updater, *runnertest.Recorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logger.NewRegistry(logger.WithStdout(&buf)).Console("update-test", logger.InfoLevel, false)
	if err != nil {
		t.Fatal(err)
	}
	rec := runnertest.New()
	return &Updater{Exec: rec, Log: log}, rec, &buf
}

func TestRun_FullSequence(t *testing.T) {
	u, rec, buf := newUpdater(t)

	if err := u.Run(Options{Brewfile: "/Users/op/Brewfile"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"uv self update",
		"uv tool update --all",
		"brew list",
		"brew outdated",
		"brew autoremove",
		"brew update",
		"brew upgrade --greedy",
		"brew doctor",
		"brew cleanup",
		"brew bundle dump --force --file=/Users/op/Brewfile",
		"brew services list",
	}
	got := rec.Lines()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("ran:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	doctor, _ := rec.Find("brew doctor")
	if !doctor.Options.IgnoreErrors {
		t.Fatalf("brew doctor must be advisory")
	}
	upgrade, _ := rec.Find("brew upgrade --greedy")
	if upgrade.Options.IgnoreErrors {
		t.Fatalf("brew upgrade must be fatal on failure")
	}

	if !strings.Contains(buf.String(), "[INFO] UPDATE UV TOOLS") {
		t.Fatalf("step headline missing: %q", buf.String())
	}
}

func TestRun_DoctorFailureContinues(t *testing.T) {
	u, rec, _ := newUpdater(t)
	rec.ExitCodes["brew doctor"] = 1

	if err := u.Run(Options{Brewfile: "Brewfile"}); err != nil {
		t.Fatalf("advisory failure must not stop the run: %v", err)
	}
	lines := rec.Lines()
	if lines[len(lines)-1] != "brew services list" {
		t.Fatalf("run did not reach the last step: %v", lines)
	}
}

func TestRun_FatalStepStops(t *testing.T) {
	u, rec, _ := newUpdater(t)
	rec.ExitCodes["brew update"] = 9

	err := u.Run(Options{Brewfile: "Brewfile"})
	if got := runner.ExitCode(err); got != 9 {
		t.Fatalf("expected exit code 9, got %d (%v)", got, err)
	}
	lines := rec.Lines()
	if lines[len(lines)-1] != "brew update" {
		t.Fatalf("run continued past the failing step: %v", lines)
	}
}

func TestRun_Skips(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantFirst string
		wantCount int
	}{
		{"skip uv", Options{SkipUv: true}, "brew list", len(BrewSteps(""))},
		{"skip brew", Options{SkipBrew: true}, "uv self update", len(UvSteps())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, rec, _ := newUpdater(t)
			if err := u.Run(tt.opts); err != nil {
				t.Fatal(err)
			}
			lines := rec.Lines()
			if len(lines) != tt.wantCount || lines[0] != tt.wantFirst {
				t.Fatalf("ran %v", lines)
			}
		})
	}
}
