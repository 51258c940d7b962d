// Package tracelog records the adapter's wire traffic and diagnostics in a
// side file, keeping stdout clean for the protocol.
package tracelog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Trace is an append-only record of the session: every inbound body prefixed
// "=>", every outbound encoded message prefixed "<=", diagnostics prefixed
// "--". A Trace never blocks the protocol loop; the first write failure
// disables it for the rest of the session.
type Trace struct {
	mu       sync.Mutex
	out      io.WriteCloser
	disabled bool
}

// Open creates a trace appending to the file at path.
func Open(path string) (*Trace, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &Trace{out: f}, nil
}

// Discard returns a trace that records nothing.
func Discard() *Trace {
	return &Trace{disabled: true}
}

// Inbound records one received message body.
func (t *Trace) Inbound(body []byte) {
	t.write("=> ", body)
}

// Outbound records one sent encoded message.
func (t *Trace) Outbound(body []byte) {
	t.write("<= ", body)
}

// Printf records a diagnostic line.
func (t *Trace) Printf(format string, args ...any) {
	t.write("-- ", []byte(fmt.Sprintf(format, args...)))
}

func (t *Trace) write(prefix string, body []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.disabled || t.out == nil {
		return
	}

	line := make([]byte, 0, len(prefix)+len(body)+1)
	line = append(line, prefix...)
	line = append(line, body...)
	line = append(line, '\n')

	if _, err := t.out.Write(line); err != nil {
		t.disabled = true
	}
}

// Close flushes and closes the trace file.
func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disabled = true
	if t.out == nil {
		return nil
	}
	err := t.out.Close()
	t.out = nil
	return err
}

// LogLevel represents the severity level of a diagnostic message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LogLevelDebug
	case "info", "INFO":
		return LogLevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LogLevelWarn
	case "error", "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger writes level-filtered diagnostics through a Trace.
type Logger struct {
	trace *Trace
	level LogLevel
}

// NewLogger creates a logger over the given trace.
func NewLogger(trace *Trace, level LogLevel) *Logger {
	if trace == nil {
		trace = Discard()
	}
	return &Logger{trace: trace, level: level}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	timestamp := time.Now().Format("2006-01-02T15:04:05.000")
	l.trace.Printf("%s [%s] %s", timestamp, level.String(), msg)
}
