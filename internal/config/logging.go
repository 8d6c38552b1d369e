package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// logTimeFormat is the timestamp layout of every log line.
const logTimeFormat = "2006-01-02 15:04:05.000"

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelOff:
		return zerolog.Disabled
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger writes leveled log lines through zerolog, to a file or a console.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	zl     *zerolog.Logger
	closer io.Closer
}

// NewLogger creates a logger appending to filePath. With LogLevelOff or an
// empty path nothing is written.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	logger := &Logger{level: level}

	if level == LogLevelOff || filePath == "" {
		return logger, nil
	}

	// Expand home directory
	if strings.HasPrefix(filePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, filePath[2:])
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	logger.closer = f
	logger.zl = newZerolog(f, false, level)
	return logger, nil
}

// NewConsoleLogger creates a logger writing human readable lines to w,
// normally stderr under --debug.
func NewConsoleLogger(level LogLevel, w io.Writer) *Logger {
	logger := &Logger{level: level}
	if level != LogLevelOff && w != nil {
		logger.zl = newZerolog(w, true, level)
	}
	return logger
}

func newZerolog(w io.Writer, color bool, level LogLevel) *zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: logTimeFormat}
	zl := zerolog.New(out).Level(level.zerolog()).With().Timestamp().Logger()
	return &zl
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		return err
	}
	return nil
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	if l.zl != nil {
		zl := l.zl.Level(level.zerolog())
		l.zl = &zl
	}
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// DebugFields logs msg at debug level with structured fields.
func (l *Logger) DebugFields(msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled(LogLevelDebug) {
		return
	}
	l.zl.Debug().Fields(fields).Msg(msg)
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

func (l *Logger) enabled(level LogLevel) bool {
	return l.zl != nil && l.level != LogLevelOff && level <= l.level
}

// log writes a log message if the level is appropriate.
func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if level == LogLevelDebug {
		l.zl.Debug().Msg(msg)
		return
	}
	l.zl.Error().Msg(msg)
}

// logWriter implements io.Writer for the logger.
type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}
