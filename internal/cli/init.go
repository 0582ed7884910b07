// Package cli provides common initialization shared by cmd/fornitori,
// cmd/fornitori-worker, and cmd/fornitori-backup.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"fornitori/internal/config"
	applog "fornitori/internal/log"
)

// SetupLogger initializes structured logging at the default info level
// and installs it as the process default. Call ApplyLogLevel once the
// configuration is loaded to honor LOG_LEVEL.
func SetupLogger() *slog.Logger {
	return applog.Setup(slog.LevelInfo)
}

// ApplyLogLevel re-installs the default logger at the configured level.
// Messages logged before this point come out at info.
func ApplyLogLevel(level string) *slog.Logger {
	return applog.Setup(applog.LevelFromEnv(level))
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}
