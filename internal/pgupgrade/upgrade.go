// Package pgupgrade upgrades a Homebrew-managed PostgreSQL installation to a
// new major version: back up with pg_dumpall, initialize the new data
// directory, run pg_upgrade and switch the brew service over.
package pgupgrade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"macops/internal/brew"
	"macops/internal/logger"
	"macops/internal/runner"
)

// stampLayout is the timestamp embedded in backup file names.
const stampLayout = "20060102_150405"

// Upgrader runs the upgrade sequence. Every external step goes through Exec,
// so a failing command stops the sequence with its error.
type Upgrader struct {
	Exec brew.Executor
	Log  *logger.Logger
	Home string           // directory receiving the pg_dumpall backup
	Now  func() time.Time // backup timestamp source; time.Now when nil
}

// Result describes a completed upgrade.
type Result struct {
	Paths      Paths
	BackupFile string
}

// Upgrade moves PostgreSQL from oldVer to newVer.
func (u *Upgrader) Upgrade(oldVer, newVer string) (Result, error) {
	oldVer, newVer, err := CanonicalVersions(oldVer, newVer)
	if err != nil {
		return Result{}, err
	}

	u.Log.Info("Starting PostgreSQL upgrade: %s -> %s", oldVer, newVer)

	bc := brew.New(u.Exec, u.Log)
	prefix, err := bc.Prefix()
	if err != nil {
		return Result{}, err
	}

	formulas := FormulasFor(oldVer, newVer)
	paths := BuildPaths(prefix, formulas)
	res := Result{Paths: paths}

	u.Log.Info("Old bindir: %s", paths.OldBindir)
	u.Log.Info("New bindir: %s", paths.NewBindir)
	u.Log.Info("Old datadir: %s", paths.OldDatadir)
	u.Log.Info("New datadir: %s", paths.NewDatadir)

	if err := bc.EnsureInstalled(formulas.New); err != nil {
		return res, err
	}

	u.Log.Info("Ensure old PostgreSQL service is running for backup operation: %s", formulas.Old)
	if err := bc.StartService(formulas.Old); err != nil {
		return res, err
	}

	res.BackupFile = filepath.Join(u.Home, BackupName(oldVer, newVer, u.now().Format(stampLayout)))
	if err := u.Backup(filepath.Join(paths.OldBindir, "pg_dumpall"), res.BackupFile); err != nil {
		return res, err
	}

	if err := bc.StopService(formulas.Old); err != nil {
		return res, err
	}

	if err := u.InitDatadir(filepath.Join(paths.NewBindir, "initdb"), paths.NewDatadir); err != nil {
		return res, err
	}

	u.Log.Info("Running pg_upgrade...")
	if err := u.Exec.Run([]string{
		filepath.Join(paths.NewBindir, "pg_upgrade"),
		"--old-bindir=" + paths.OldBindir,
		"--new-bindir=" + paths.NewBindir,
		"--old-datadir=" + paths.OldDatadir,
		"--new-datadir=" + paths.NewDatadir,
	}); err != nil {
		return res, err
	}

	if err := bc.StartService(formulas.New); err != nil {
		return res, err
	}

	u.Log.Info("Upgrade complete: %s -> %s", oldVer, newVer)
	u.Log.Info("Backup stored at: %s", res.BackupFile)
	u.Log.Warning("Update zsh/env.zsh PATH variable to new %s/bin.", formulas.New)
	return res, nil
}

// Backup dumps every database with pgDumpall into backupFile. A failed dump
// leaves no partial file behind.
func (u *Upgrader) Backup(pgDumpall, backupFile string) error {
	u.Log.Info("Creating backup with %s", pgDumpall)
	u.Log.Info("Backup file: %s", backupFile)

	f, err := os.OpenFile(backupFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}

	runErr := u.Exec.Run([]string{pgDumpall}, runner.WithStdout(f))
	closeErr := f.Close()

	if runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("close backup file: %w", closeErr)
	}
	if runErr != nil {
		u.Log.Error("Backup failed. Removing partial file: %s", backupFile)
		if rmErr := os.Remove(backupFile); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			u.Log.Warning("Could not remove %s: %v", backupFile, rmErr)
		}
		return runErr
	}

	u.Log.Info("Backup complete.")
	return nil
}

// InitDatadir runs initdb only when datadir is missing or empty.
func (u *Upgrader) InitDatadir(initdb, datadir string) error {
	u.Log.Info("Initializing new data directory (if empty): %s", datadir)

	empty, err := isEmptyDir(datadir)
	if err != nil {
		return err
	}
	if !empty {
		u.Log.Info("Data directory exists; skipping initdb.")
		return nil
	}
	return u.Exec.Run([]string{initdb, "-D", datadir})
}

func (u *Upgrader) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// isEmptyDir reports true for a missing directory or one without entries.
func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect data directory %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}
