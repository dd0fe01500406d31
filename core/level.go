package core

import (
	"fmt"
	"strings"
)

// Level specifies the severity of a log event.
type Level int

const (
	// TraceLevel is the most detailed logging level.
	TraceLevel Level = iota

	// DebugLevel is for debugging information.
	DebugLevel

	// InfoLevel is for informational messages.
	InfoLevel

	// WarningLevel is for warnings.
	WarningLevel

	// ErrorLevel is for errors.
	ErrorLevel

	// CriticalLevel is for unrecoverable errors.
	CriticalLevel
)

// String returns the canonical upper-case name of the level,
// as it appears in pattern and JSON output.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
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
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and accepts the common aliases "warn" and "fatal".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info", "information":
		return InfoLevel, nil
	case "warn", "warning":
		return WarningLevel, nil
	case "error":
		return ErrorLevel, nil
	case "critical", "fatal":
		return CriticalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}
