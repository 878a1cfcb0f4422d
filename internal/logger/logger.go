// Package logger provides a small logging interface so packages can log
// without being coupled to a specific implementation.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger defines the logging operations used across rex components.
// All methods accept a format string and arguments, like fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger logs to stderr via the standard log package.
// Debug messages are only printed when REX_DEBUG is set.
type envLogger struct {
	prefix string
}

// New creates a logger that respects the REX_DEBUG environment variable.
// The prefix is prepended to all messages (e.g., "[remote]").
func New(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv("REX_DEBUG") != "" {
		log.Printf(l.prefix+" "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+" ERROR: "+format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (noopLogger) Debug(format string, args ...interface{}) {}
func (noopLogger) Info(format string, args ...interface{})  {}
func (noopLogger) Warn(format string, args ...interface{})  {}
func (noopLogger) Error(format string, args ...interface{}) {}

// Message is a captured log message.
type Message struct {
	Level string
	Text  string
}

// Buffer captures log messages for test assertions.
type Buffer struct {
	Messages []Message
}

// NewBuffer creates a logger that records messages for inspection.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) record(level, format string, args ...interface{}) {
	b.Messages = append(b.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

func (b *Buffer) Debug(format string, args ...interface{}) { b.record("debug", format, args...) }
func (b *Buffer) Info(format string, args ...interface{})  { b.record("info", format, args...) }
func (b *Buffer) Warn(format string, args ...interface{})  { b.record("warn", format, args...) }
func (b *Buffer) Error(format string, args ...interface{}) { b.record("error", format, args...) }

// HasLevel reports whether any message was logged at the given level.
func (b *Buffer) HasLevel(level string) bool {
	for _, m := range b.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}
