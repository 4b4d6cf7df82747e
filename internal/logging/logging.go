package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level is the severity of a log entry.
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

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string to a Level. Unknown values are info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	logFile *os.File
)

// InitForCLI logs to w (normally stderr).
func InitForCLI(level Level, w io.Writer) {
	setLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})), nil)
}

// InitForTUI logs to a file, since the terminal belongs to the UI while it
// runs. Close must be called on shutdown.
func InitForTUI(level Level, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	setLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level.slogLevel()})), f)
	return nil
}

// Close releases the TUI log file, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logger = nil
	return err
}

func setLogger(l *slog.Logger, f *os.File) {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logger = l
	logFile = f
}

func logInternal(level Level, subsystem string, err error, format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem, format string, args ...any) {
	logInternal(LevelDebug, subsystem, nil, format, args...)
}

// Info logs an informational message.
func Info(subsystem, format string, args ...any) {
	logInternal(LevelInfo, subsystem, nil, format, args...)
}

// Warn logs a warning.
func Warn(subsystem, format string, args ...any) {
	logInternal(LevelWarn, subsystem, nil, format, args...)
}

// Error logs an error with its cause.
func Error(subsystem string, err error, format string, args ...any) {
	logInternal(LevelError, subsystem, err, format, args...)
}
