package converter

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Logger is the logging interface used by the converter.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown names map to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// NewLogger returns a logger writing "[LEVEL] message" lines to w, dropping
// messages below level. It is safe for concurrent use.
func NewLogger(w io.Writer, level Level) Logger {
	return &defaultLogger{w: w, level: level}
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return NewLogger(io.Discard, LevelError+1)
}

// defaultLogger is a simple leveled logger.
type defaultLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

func (l *defaultLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, "DEBUG", msg, args...)
}

func (l *defaultLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, "INFO", msg, args...)
}

func (l *defaultLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, "WARN", msg, args...)
}

func (l *defaultLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, "ERROR", msg, args...)
}

func (l *defaultLogger) log(level Level, prefix, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "["+prefix+"] "+msg+"\n", args...)
}
