// Package log wraps log/slog with a per-component attribute so every line
// names the subsystem that produced it.
package log

import (
	"log/slog"
	"os"
)

// Logger carries a component attribute on every record.
type Logger struct {
	*slog.Logger
	handler   slog.Handler
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
}

// ParseLevel maps a config string to a slog level; unknown strings mean Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing text records to stdout.
func New(config Config) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	return &Logger{
		Logger:    slog.New(handler).With("component", config.Component),
		handler:   handler,
		component: config.Component,
	}
}

// WithComponent returns a logger for a different subsystem sharing the same
// handler.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    slog.New(l.handler).With("component", component),
		handler:   l.handler,
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
