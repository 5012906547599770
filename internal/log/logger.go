// Package log sets up the process-wide slog logger. Services log through
// slog directly; this package owns handler construction and the component
// attribute convention.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Standard component names used in the "component" attribute.
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentBackend   = "backend"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRecurring = "recurring"
	ComponentAlerts    = "alerts"
)

// Config holds logger construction options.
type Config struct {
	Level     slog.Level
	Component string
	JSON      bool
}

// ParseLevel maps a level name to its slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to stdout with the configured handler and a
// fixed component attribute.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return logger
}

// SetDefault installs the logger as the slog default, which is what the
// service layer logs through.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
