package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLink is returned by Validate for a link missing its target or source.
var ErrInvalidLink = errors.New("link needs both target and source")

const dotfilesRepo = "~/Development/github/arwhyte/dotfiles-m1"

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		LogDir:   "logs",
		Brewfile: dotfilesRepo + "/brew/Brewfile",
		Dotfiles: Dotfiles{
			Base: dotfilesRepo,
			Home: "~",
			Links: []Link{
				{Target: ".gitconfig", Source: "git/.gitconfig"},
				{Target: ".psqlrc", Source: "psql/.psqlrc"},
				{Target: ".zprofile", Source: "zsh/.zprofile"},
				{Target: ".zshenv", Source: "zsh/.zshenv"},
				{Target: ".zshrc", Source: "zsh/.zshrc"},
			},
		},
	}
}

// Load reads the YAML file at path on top of Default. A missing file is not
// an error and yields the defaults; an unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks fields that have no sensible fallback.
func (c Config) Validate() error {
	for i, l := range c.Dotfiles.Links {
		if strings.TrimSpace(l.Target) == "" || strings.TrimSpace(l.Source) == "" {
			return fmt.Errorf("dotfiles.links[%d]: %w", i, ErrInvalidLink)
		}
	}
	return nil
}

// Resolve returns a copy of c with "~" expanded against home and every link
// made absolute: targets relative to Dotfiles.Home, sources relative to Dotfiles.Base.
func (c Config) Resolve(home string) Config {
	out := c
	out.LogDir = ExpandPath(c.LogDir, home)
	out.Brewfile = ExpandPath(c.Brewfile, home)

	out.Dotfiles.Home = ExpandPath(c.Dotfiles.Home, home)
	if out.Dotfiles.Home == "" {
		out.Dotfiles.Home = home
	}
	out.Dotfiles.Base = ExpandPath(c.Dotfiles.Base, home)
	out.Dotfiles.Bundle = ExpandPath(c.Dotfiles.Bundle, home)

	out.Dotfiles.Links = make([]Link, 0, len(c.Dotfiles.Links))
	for _, l := range c.Dotfiles.Links {
		out.Dotfiles.Links = append(out.Dotfiles.Links, Link{
			Target: under(out.Dotfiles.Home, ExpandPath(l.Target, home)),
			Source: under(out.Dotfiles.Base, ExpandPath(l.Source, home)),
		})
	}
	return out
}

// ExpandPath replaces a leading "~" with home.
func ExpandPath(p, home string) string {
	switch {
	case p == "~":
		return home
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(home, p[2:])
	default:
		return p
	}
}

func under(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
