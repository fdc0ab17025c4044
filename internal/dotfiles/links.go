// Package dotfiles installs dotfile symlinks into the home directory and can
// unpack an archived dotfiles bundle to link from.
package dotfiles

import (
	"fmt"
	"os"
	"path/filepath"

	"macops/internal/config"
	"macops/internal/logger"
)

// CreateSymlink replaces dst with a symlink pointing at src, like
// `rm -rf dst; ln -nfs src dst`. A real directory at dst is removed
// recursively; a symlink to a directory is removed, not followed.
func CreateSymlink(src, dst string) error {
	info, err := os.Lstat(dst)
	switch {
	case err == nil && info.IsDir():
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("remove directory %s: %w", dst, err)
		}
	case err == nil:
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("remove %s: %w", dst, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("inspect %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", dst, err)
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("link %s -> %s: %w", dst, src, err)
	}
	return nil
}

// Installer links every configured dotfile.
type Installer struct {
	Log    *logger.Logger
	DryRun bool
}

// Install creates each link in order and stops at the first failure.
// Links are expected to be resolved (absolute paths), see config.Config.Resolve.
func (i *Installer) Install(links []config.Link) error {
	for _, l := range links {
		i.Log.Info("Linking %s → %s", l.Target, l.Source)
		if i.DryRun {
			continue
		}
		if _, err := os.Stat(l.Source); err != nil {
			i.Log.Warning("Link source %s is missing; the link will dangle", l.Source)
		}
		if err := CreateSymlink(l.Source, l.Target); err != nil {
			return err
		}
	}
	if i.DryRun {
		i.Log.Info("Dry run: %d link(s) not created.", len(links))
	}
	return nil
}
