package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the level
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
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// color returns the ANSI color code used for terminal output
func (l Level) color() string {
	switch l {
	case LevelDebug:
		return "\033[36m"
	case LevelInfo:
		return "\033[38;5;195m"
	case LevelWarn:
		return "\033[33m"
	case LevelError:
		return "\033[31m"
	case LevelFatal:
		return "\033[35m"
	default:
		return "\033[0m"
	}
}

// ParseLevel converts a string level to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Config holds logger configuration options
type Config struct {
	Level       string
	Output      io.Writer
	Prefix      string
	EnableColor bool
}

// Logger is a leveled logger with an optional component prefix
type Logger struct {
	mu          sync.RWMutex
	level       Level
	prefix      string
	enableColor bool
	out         *log.Logger
}

// New creates a Logger from a Config
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Logger{
		level:       ParseLevel(config.Level),
		prefix:      config.Prefix,
		enableColor: config.EnableColor,
		out:         log.New(config.Output, "", 0),
	}
}

// SetLevel sets the minimum level that will be emitted
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// enabled checks whether a level passes the current threshold
func (l *Logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) format(level Level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	var colorStart, colorEnd string
	if l.enableColor {
		colorStart = level.color()
		colorEnd = "\033[0m"
	}

	prefix := ""
	if l.prefix != "" {
		prefix = fmt.Sprintf("[%s] ", l.prefix)
	}

	return fmt.Sprintf("%s%-5s %s %s%s%s", colorStart, level.String(), timestamp, prefix, message, colorEnd)
}

func (l *Logger) emit(level Level, message string) {
	if !l.enabled(level) {
		return
	}
	l.out.Print(l.format(level, message))
	if level == LevelFatal {
		os.Exit(1)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(args ...interface{}) { l.emit(LevelDebug, fmt.Sprint(args...)) }

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs a message at INFO level
func (l *Logger) Info(args ...interface{}) { l.emit(LevelInfo, fmt.Sprint(args...)) }

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a message at WARN level
func (l *Logger) Warn(args ...interface{}) { l.emit(LevelWarn, fmt.Sprint(args...)) }

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs a message at ERROR level
func (l *Logger) Error(args ...interface{}) { l.emit(LevelError, fmt.Sprint(args...)) }

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(LevelError, fmt.Sprintf(format, args...))
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(args ...interface{}) { l.emit(LevelFatal, fmt.Sprint(args...)) }

// Fatalf logs a formatted message at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.emit(LevelFatal, fmt.Sprintf(format, args...))
}

// WithPrefix returns a child logger whose prefix is extended with the given
// component name
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	child := prefix
	if l.prefix != "" {
		child = l.prefix + ":" + prefix
	}
	return &Logger{
		level:       l.level,
		prefix:      child,
		enableColor: l.enableColor,
		out:         l.out,
	}
}
