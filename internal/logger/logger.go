package logger

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
)

// sink is one output destination with its own formatter.
type sink struct {
	w         io.Writer
	formatter Formatter
	closer    io.Closer // set for file sinks only
}

// Logger is a named registry entry. It is obtained from a Registry and never
// constructed directly.
type Logger struct {
	name      string
	registry  *Registry
	mu        sync.Mutex
	level     Level
	propagate bool
	sinks     []sink
}

// Name returns the name the logger is registered under.
func (l *Logger) Name() string { return l.name }

// Level returns the configured threshold.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel changes the threshold without touching sinks.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level.orDefault()
	l.mu.Unlock()
}

// SinkCount reports how many sinks are attached.
func (l *Logger) SinkCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sinks)
}

// Enabled reports whether a record at level would be emitted.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level()
}

func (l *Logger) Debug(format string, args ...any) { l.log(DebugLevel, format, args...) }

func (l *Logger) Info(format string, args ...any) { l.log(InfoLevel, format, args...) }

func (l *Logger) Warning(format string, args ...any) { l.log(WarningLevel, format, args...) }

func (l *Logger) Error(format string, args ...any) { l.log(ErrorLevel, format, args...) }

func (l *Logger) Critical(format string, args ...any) { l.log(CriticalLevel, format, args...) }

// Exception logs at ERROR and attaches err and the current goroutine's stack
// to the record.
func (l *Logger) Exception(err error, format string, args ...any) {
	if !l.Enabled(ErrorLevel) {
		return
	}
	var b strings.Builder
	b.WriteString(render(format, args))
	if err != nil {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(debug.Stack()), "\n"))
	l.emit(l.registry.record(l.name, ErrorLevel, b.String()))
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.emit(l.registry.record(l.name, level, render(format, args)))
}

// emit writes r to every sink of l, then hands it up the hierarchy when
// propagation is on. Thresholds are not re-checked on ancestors.
func (l *Logger) emit(r Record) {
	l.mu.Lock()
	for _, s := range l.sinks {
		// Write errors are dropped; a broken sink must not break the caller.
		_, _ = io.WriteString(s.w, s.formatter.Format(r)+"\n")
	}
	propagate := l.propagate
	l.mu.Unlock()

	if !propagate {
		return
	}
	if parent := l.registry.parentOf(l.name); parent != nil {
		parent.emit(r)
	}
}

// render applies printf-style args. With no args the format is used verbatim,
// so messages containing '%' (command lines, URLs) survive untouched.
func render(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
