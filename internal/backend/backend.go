// Package backend wires a storage gateway and the optional AMQP event
// client together behind a factory, so the binaries share one setup path.
package backend

import (
	"fornitori/internal/amqp"
	"fornitori/internal/config"
	"fornitori/internal/store"
)

// BackendType identifies which storage implementation backs the gateway.
type BackendType string

const (
	// MemoryBackend keeps all data in process memory.
	MemoryBackend BackendType = "memory"
	// SQLiteBackend persists data in a local SQLite database.
	SQLiteBackend BackendType = "sqlite"
)

// String returns the type name as used in configuration.
func (t BackendType) String() string {
	return string(t)
}

// IsValid reports whether t names a known backend type.
func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases the resources a backend acquired. It may be nil
// when there is nothing to release.
type CleanupFunc func() error

// Result bundles what a created backend hands to the binaries: the storage
// gateway, an AMQP client for change events (nil when no broker is
// configured or the connection failed), and the cleanup hook.
type Result struct {
	Gateway store.Gateway
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Config carries the subset of application configuration the factory needs.
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	SeedFile     string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig maps the application configuration onto a factory Config.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		Type:         BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		SeedFile:     cfg.SeedFile,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}
}
