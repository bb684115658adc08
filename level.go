package argus

import (
	"fmt"
	"strings"
)

// Level is the severity of a log record. Levels are ordered: a logger set to
// LevelWarning writes warning, error and critical records and drops the rest.
type Level int

// Severity levels. The numeric values match the host conventions the file
// format was designed around, so log_level in a finalized document stays
// comparable across tooling.
const (
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

// String returns the level name written to log records and the console.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to its Level value.
// Matching is case-insensitive; "warn" is accepted as an alias for warning.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", s)
	}
}
