// Package logging provides a small level-gated logger on top of the
// standard library's log package, the way the teacher logs at call sites
// with the stdlib "log" package (straga-Mimir_lite pkg/storage/badger.go,
// pkg/storage/transaction.go) rather than pull in a structured-logging
// dependency neither the teacher nor the rest of the pack's storage path
// uses (see DESIGN.md for the stdlib justification).
package logging

import (
	"log"
	"os"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config file's logging.level string (spec §6
// "Configuration" section) to a Level, defaulting to LevelInfo for an
// empty or unrecognized value rather than erroring, since a bad level
// string should degrade gracefully rather than block startup.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a minimal level-gated wrapper around *log.Logger.
type Logger struct {
	mu    sync.Mutex
	level Level
	std   *log.Logger
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide default logger, initialized once (spec
// §5 "the configurable logging sink" is one of the permitted global
// singletons).
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(LevelInfo)
	})
	return defaultLogger
}

func New(level Level) *Logger {
	return &Logger{level: level, std: log.New(os.Stderr, "", log.LstdFlags)}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.Lock()
	cur := l.level
	l.mu.Unlock()
	if level < cur {
		return
	}
	l.std.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }
