package telemetry

import (
	"fmt"
	"strings"
)

// Level is the process-wide telemetry policy. Levels are ordered: a higher
// level implies every capability of the lower ones, so LevelUsage permits
// usage, error and crash reporting while LevelCrash permits crash
// reporting only.
type Level int

const (
	LevelNone Level = iota
	LevelCrash
	LevelError
	LevelUsage
)

// String returns the canonical name of the level
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelCrash:
		return "crash"
	case LevelError:
		return "error"
	case LevelUsage:
		return "usage"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a policy string ("none", "crash", "error", "usage",
// plus the common aliases "off" and "all") into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off", "false":
		return LevelNone, nil
	case "crash":
		return LevelCrash, nil
	case "error":
		return LevelError, nil
	case "usage", "all", "on", "true":
		return LevelUsage, nil
	default:
		return LevelNone, fmt.Errorf("unknown telemetry level %q", s)
	}
}
