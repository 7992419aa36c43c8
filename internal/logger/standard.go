package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StandardLogger provides a baseline logger implementation backed by a single writer.
type StandardLogger struct {
	mu        sync.Mutex
	level     Level
	output    io.Writer
	formatter Formatter
}

// Option configures a StandardLogger during construction.
type Option func(*StandardLogger)

// WithLevel sets the minimum Level that will be emitted by the logger.
func WithLevel(level Level) Option {
	return func(l *StandardLogger) {
		l.level = level
	}
}

// WithOutput redirects log output to the provided writer.
func WithOutput(w io.Writer) Option {
	return func(l *StandardLogger) {
		l.output = w
	}
}

// WithFormatter overrides the formatter used to render log entries.
func WithFormatter(formatter Formatter) Option {
	return func(l *StandardLogger) {
		l.formatter = formatter
	}
}

// NewStandardLogger constructs a StandardLogger configured by the provided options.
func NewStandardLogger(options ...Option) *StandardLogger {
	log := &StandardLogger{
		level:     LevelInfo,
		output:    os.Stdout,
		formatter: &TextFormatter{TimestampFormat: "15:04:05"},
	}

	for _, opt := range options {
		if opt != nil {
			opt(log)
		}
	}

	if log.output == nil {
		log.output = os.Stdout
	}
	if log.formatter == nil {
		log.formatter = &TextFormatter{TimestampFormat: "15:04:05"}
	}

	return log
}

// Debug emits a debug level log entry.
func (l *StandardLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, "", format, args...)
}

// Info emits an info level log entry.
func (l *StandardLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, "", format, args...)
}

// Warn emits a warn level log entry.
func (l *StandardLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, "", format, args...)
}

// Error emits an error level log entry.
func (l *StandardLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, "", format, args...)
}

// Success emits an info level entry marked as a completed operation.
func (l *StandardLogger) Success(format string, args ...interface{}) {
	l.log(LevelInfo, "✓", format, args...)
}

// Progress emits an info level entry marking the start of an operation.
func (l *StandardLogger) Progress(operation string) {
	l.log(LevelInfo, "…", "%s", operation)
}

// ProgressDone emits an info level entry marking the end of an operation.
func (l *StandardLogger) ProgressDone(operation string) {
	l.log(LevelInfo, "✓", "%s", operation)
}

// SetLevel adjusts the minimum log level emitted.
func (l *StandardLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *StandardLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *StandardLogger) log(level Level, mark, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := &Entry{
		Time:    time.Now(),
		Level:   level,
		Mark:    mark,
		Message: fmt.Sprintf(format, args...),
	}

	bytes, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format log entry: %v\n", err)
		return
	}

	if _, err := l.output.Write(bytes); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}
