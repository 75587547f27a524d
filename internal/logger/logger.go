package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level is a log severity level.
type Level int32

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// ParseLevel parses a level name like "debug" or "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// SetLevel sets the global minimum level.
func SetLevel(l Level) {
	current.Store(int32(l))
}

func logf(l Level, prefix, format string, args ...any) {
	if int32(l) < current.Load() {
		return
	}
	log.Printf(prefix+" "+format, args...)
}

func Trace(format string, args ...any) { logf(LevelTrace, "[TRACE]", format, args...) }
func Debug(format string, args ...any) { logf(LevelDebug, "[DEBUG]", format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, "[INFO]", format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, "[WARN]", format, args...) }
func Error(format string, args ...any) { logf(LevelError, "[ERROR]", format, args...) }
