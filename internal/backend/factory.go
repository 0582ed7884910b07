package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fornitori/internal/amqp"
	"fornitori/internal/backup"
	"fornitori/internal/storage"
	"fornitori/internal/store/memory"
)

// Factory creates fully wired storage backends.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory. A nil logger falls back to
// slog.Default().
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(cfg)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	events := f.connectEvents(cfg)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", events != nil)

	return &Result{
		Gateway: repo,
		Events:  events,
		Cleanup: func() error {
			var errs []string
			if events != nil {
				if err := events.Close(); err != nil {
					errs = append(errs, fmt.Sprintf("close AMQP client: %v", err))
				}
			}
			if err := repo.Close(); err != nil {
				errs = append(errs, fmt.Sprintf("close SQLite repository: %v", err))
			}
			if len(errs) > 0 {
				return fmt.Errorf("backend cleanup: %v", errs)
			}
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, cfg Config) (*Result, error) {
	gw := memory.New()

	if cfg.SeedFile != "" {
		f.seed(ctx, gw, cfg.SeedFile)
	}

	events := f.connectEvents(cfg)

	f.logger.Info("Initialized memory backend",
		"seed_file", cfg.SeedFile,
		"amqp_enabled", events != nil)

	cleanup := CleanupFunc(nil)
	if events != nil {
		cleanup = events.Close
	}

	return &Result{
		Gateway: gw,
		Events:  events,
		Cleanup: cleanup,
	}, nil
}

// connectEvents dials the broker when an AMQP URL is configured. A failed
// connection only logs a warning: data entry keeps working without change
// events, the mirror just goes stale until the broker is back.
func (f *DefaultFactory) connectEvents(cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// seed loads an exported document into a fresh store. Seed problems are
// not fatal: the service starts empty and logs what went wrong.
func (f *DefaultFactory) seed(ctx context.Context, gw *memory.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		f.logger.Warn("Failed to read seed file, starting empty", "file", path, "error", err)
		return
	}

	doc, err := backup.Decode(data)
	if err != nil {
		f.logger.Warn("Failed to decode seed file, starting empty", "file", path, "error", err)
		return
	}

	if err := backup.Import(ctx, gw, doc); err != nil {
		f.logger.Warn("Failed to import seed data, starting empty", "file", path, "error", err)
		return
	}

	f.logger.Info("Seed data loaded",
		"file", path,
		"suppliers", len(doc.Suppliers),
		"invoices", len(doc.Invoices))
}
