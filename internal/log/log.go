// Package log owns slog setup and the shared field names used across
// the ledger's structured logs.
package log

import (
	"log/slog"
	"os"
)

// Setup initializes structured logging on stdout at the given level and
// installs the logger as the process default.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LevelFromEnv maps a LOG_LEVEL value to a slog level, defaulting to
// info for unknown values.
func LevelFromEnv(value string) slog.Level {
	switch value {
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
