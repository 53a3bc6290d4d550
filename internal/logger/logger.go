// Package logger provides logging utilities for the sync tooling.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal zerolog.Logger
}

// NewLogger creates a new logger instance with the specified level.
// Output goes to stderr as human-readable console lines, or as JSON
// when LOG_FORMAT=json is set.
func NewLogger(level string) *Logger {
	var writer io.Writer = os.Stderr

	if os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	internal := zerolog.New(writer).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{internal: internal}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Info logs an info level message. Extra args are alternating key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.internal.Info().Fields(args).Msg(msg)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.internal.Error().Fields(args).Msg(msg)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debug().Fields(args).Msg(msg)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warn().Fields(args).Msg(msg)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With().Fields(args).Logger(),
	}
}
