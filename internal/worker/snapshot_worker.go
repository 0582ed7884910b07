// Package worker keeps the mirror targets in step with the ledger. It
// listens for change notifications, debounces them, and re-exports the
// full dataset to every target; a periodic snapshot covers notifications
// lost while the broker was down.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fornitori/internal/amqp"
	"fornitori/internal/backup"
	"fornitori/internal/mirror"
	"fornitori/internal/store"
)

// Config holds configuration for the snapshot worker.
type Config struct {
	// Debounce is the quiet period after a change before snapshotting,
	// so a burst of edits produces one export instead of dozens.
	Debounce time.Duration

	// Interval is how often to snapshot regardless of changes.
	Interval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Debounce: 2 * time.Second,
		Interval: 1 * time.Hour,
	}
}

// SnapshotWorker exports the dataset to mirror targets.
type SnapshotWorker struct {
	gateway store.Gateway
	targets []mirror.Target
	config  Config

	// kick is buffered so HandleChange never blocks on a busy loop; a
	// pending kick already guarantees a snapshot is coming.
	kick chan struct{}

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSnapshotWorker creates a snapshot worker. Zero config fields fall
// back to the defaults.
func NewSnapshotWorker(gateway store.Gateway, targets []mirror.Target, config Config) *SnapshotWorker {
	defaults := DefaultConfig()
	if config.Debounce <= 0 {
		config.Debounce = defaults.Debounce
	}
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	return &SnapshotWorker{
		gateway: gateway,
		targets: targets,
		config:  config,
		kick:    make(chan struct{}, 1),
	}
}

// HandleChange schedules a snapshot. It satisfies the consume handler
// signature of the AMQP client. The change kind only matters for
// logging: every snapshot exports the full dataset anyway, which is
// what makes duplicate and out-of-order deliveries harmless.
func (w *SnapshotWorker) HandleChange(msg *amqp.ChangeMessage) error {
	slog.Info("Change notification received", "kind", msg.Kind, "id", msg.ID)
	select {
	case w.kick <- struct{}{}:
	default:
	}
	return nil
}

// Start begins the snapshot loop. Returns an error if already running.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("snapshot worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot worker started",
		"debounce", w.config.Debounce,
		"interval", w.config.Interval,
		"targets", len(w.targets))

	return nil
}

// Stop gracefully stops the worker and waits for the loop to drain.
func (w *SnapshotWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Snapshot worker stopped")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker loop is active.
func (w *SnapshotWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *SnapshotWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceC <-chan time.Time

	// Snapshot once at startup, covering changes made while the worker
	// was down.
	w.snapshot(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-w.kick:
			if debounce == nil {
				debounce = time.NewTimer(w.config.Debounce)
				debounceC = debounce.C
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.config.Debounce)
		case <-debounceC:
			debounce = nil
			debounceC = nil
			w.snapshot(ctx)
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

// snapshot exports the dataset once and fans it out to every target in
// parallel. Target failures are independent: the backup directory still
// advances when the spreadsheet is unreachable.
func (w *SnapshotWorker) snapshot(ctx context.Context) {
	started := time.Now()

	doc, err := backup.Export(ctx, w.gateway)
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot export failed", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range w.targets {
		g.Go(func() error {
			if err := target.Write(gctx, doc); err != nil {
				slog.ErrorContext(ctx, "Mirror write failed", "target", target.Name(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Snapshot completed",
		"suppliers", len(doc.Suppliers),
		"invoices", len(doc.Invoices),
		"targets", len(w.targets),
		"duration_ms", time.Since(started).Milliseconds())
}
