package logger

import (
	"fmt"
	"strings"
)

// Level is a log severity. Higher values are more severe.
type Level int

// Severity levels, ordered low to high. The zero value means "unset" and
// resolves to InfoLevel wherever a Level is configured.
const (
	DebugLevel    Level = 10
	InfoLevel     Level = 20
	WarningLevel  Level = 30
	ErrorLevel    Level = 40
	CriticalLevel Level = 50
)

// String returns the upper-case token written between brackets in each record.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL%d", int(l))
	}
}

// orDefault resolves the unset level to InfoLevel.
func (l Level) orDefault() Level {
	if l == 0 {
		return InfoLevel
	}
	return l
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARNING", "WARN":
		return WarningLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "CRITICAL", "CRIT":
		return CriticalLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
