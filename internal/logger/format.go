package logger

import (
	"time"

	"github.com/fatih/color"
)

// TimeLayout is the timestamp layout used at the start of every record.
const TimeLayout = "2006-01-02 15:04:05"

// Record is a single log event handed to sinks.
type Record struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
}

// Formatter turns a Record into one line of output, without the trailing newline.
type Formatter interface {
	Format(r Record) string
}

// levelColors maps each severity to the color wrapped around its token on the console.
var levelColors = map[Level]color.Attribute{
	DebugLevel:    color.FgCyan,
	InfoLevel:     color.FgGreen,
	WarningLevel:  color.FgYellow,
	ErrorLevel:    color.FgRed,
	CriticalLevel: color.FgMagenta,
}

// TextFormatter renders "timestamp [LEVEL] message".
// With Colorize set only the level token is colored; the rest of the line stays plain.
type TextFormatter struct {
	TimeLayout string
	Colorize   bool
}

// Format implements Formatter.
func (f TextFormatter) Format(r Record) string {
	layout := f.TimeLayout
	if layout == "" {
		layout = TimeLayout
	}

	token := r.Level.String()
	if f.Colorize {
		token = colorize(r.Level, token)
	}
	return r.Time.Format(layout) + " [" + token + "] " + r.Message
}

// colorize wraps s in the escape sequence for level. Color is forced on,
// regardless of fatih/color's terminal detection.
func colorize(level Level, s string) string {
	attr, ok := levelColors[level]
	if !ok {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}
