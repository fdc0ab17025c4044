package config

// Config is the top-level structure read from the macops YAML file.
// Fields left out of the file keep the values from Default.
type Config struct {
	LogDir   string   `yaml:"log_dir"`  // Directory receiving per-command log files
	Brewfile string   `yaml:"brewfile"` // Target of `brew bundle dump`
	Dotfiles Dotfiles `yaml:"dotfiles"`
}

// Dotfiles describes the symlinks the links command installs.
// - Base: checkout holding the real files; relative link sources resolve against it.
// - Home: directory the links are created in; relative targets resolve against it.
// - Bundle: optional archive unpacked into Base before linking.
type Dotfiles struct {
	Base   string `yaml:"base"`
	Home   string `yaml:"home"`
	Bundle string `yaml:"bundle"`
	Links  []Link `yaml:"links"`
}

// Link is a single symlink: Target is created pointing at Source.
type Link struct {
	Target string `yaml:"target"`
	Source string `yaml:"source"`
}
