package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RootName is the name of the ancestor every logger propagates to last.
const RootName = "root"

// Options configures a logger the first time it is requested from a Registry.
type Options struct {
	// Level is the severity threshold; zero means InfoLevel.
	Level Level
	// Console attaches a sink writing to the registry's stdout.
	Console bool
	// File attaches an append-mode file sink at this path when non-empty.
	File string
	// Propagate hands records to the nearest ancestor logger as well.
	Propagate bool
	// Colorize colors the level token on the console sink. File sinks are never colored.
	Colorize bool
}

// DefaultOptions returns console-only INFO logging without propagation or color.
func DefaultOptions() Options {
	return Options{Level: InfoLevel, Console: true}
}

// Registry owns loggers by name. Requesting a name that already has sinks
// returns the existing logger unchanged, so sinks are never duplicated.
type Registry struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	root    *Logger
	stdout  io.Writer
	now     func() time.Time
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithStdout sets the writer console sinks use. Defaults to os.Stdout.
func WithStdout(w io.Writer) RegistryOption {
	return func(r *Registry) { r.stdout = w }
}

// WithClock sets the time source stamped on records.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry with a sink-less root logger.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		loggers: make(map[string]*Logger),
		stdout:  os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.root = &Logger{name: RootName, registry: r, level: WarningLevel}
	return r
}

// Root returns the root logger.
func (r *Registry) Root() *Logger { return r.root }

// Get creates or retrieves the logger registered under name.
//
// If the logger already has sinks it is returned as is and opts are ignored.
// Otherwise the threshold and propagation flag are set and the requested
// sinks attached. A file sink creates missing parent directories and opens the
// file for appending; any I/O failure is returned and nothing is attached.
func (r *Registry) Get(name string, opts Options) (*Logger, error) {
	l := r.lookup(name)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.sinks) > 0 {
		return l, nil
	}

	var sinks []sink
	if opts.Console {
		sinks = append(sinks, sink{
			w:         r.stdout,
			formatter: TextFormatter{Colorize: opts.Colorize},
		})
	}
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink{w: f, formatter: TextFormatter{}, closer: f})
	}

	l.level = opts.Level.orDefault()
	l.propagate = opts.Propagate
	l.sinks = sinks
	return l, nil
}

// Console is a shortcut for a console-only logger.
func (r *Registry) Console(name string, level Level, colorize bool) (*Logger, error) {
	return r.Get(name, Options{Level: level, Console: true, Colorize: colorize})
}

// ConsoleAndFile is a shortcut for a logger writing to the console and to path.
func (r *Registry) ConsoleAndFile(name, path string, level Level, colorize bool) (*Logger, error) {
	return r.Get(name, Options{Level: level, Console: true, File: path, Colorize: colorize})
}

// Close closes every file sink held by the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	all := make([]*Logger, 0, len(r.loggers)+1)
	all = append(all, r.root)
	for _, l := range r.loggers {
		all = append(all, l)
	}
	r.mu.Unlock()

	var errs []error
	for _, l := range all {
		l.mu.Lock()
		for _, s := range l.sinks {
			if s.closer != nil {
				if err := s.closer.Close(); err != nil {
					errs = append(errs, err)
				}
			}
		}
		l.sinks = nil
		l.mu.Unlock()
	}
	return errors.Join(errs...)
}

// lookup returns the entry for name, creating an unconfigured one if needed.
func (r *Registry) lookup(name string) *Logger {
	if name == "" || name == RootName {
		return r.root
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loggers[name]
	if !ok {
		l = &Logger{name: name, registry: r, level: InfoLevel}
		r.loggers[name] = l
	}
	return l
}

// parentOf finds the nearest registered dotted ancestor of name ("a.b.c" ->
// "a.b" -> "a"), falling back to the root logger.
func (r *Registry) parentOf(name string) *Logger {
	if name == RootName {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := strings.LastIndex(name, "."); i > 0; i = strings.LastIndex(name, ".") {
		name = name[:i]
		if l, ok := r.loggers[name]; ok {
			return l
		}
	}
	return r.root
}

func (r *Registry) record(name string, level Level, msg string) Record {
	return Record{Time: r.now(), Level: level, Logger: name, Message: msg}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
