package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cleaner is implemented by caches that can drop their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs one cleanup loop for every registered cache, so each
// server owns a single background goroutine instead of one per cache.
type Manager struct {
	caches  []Cleaner
	stop    chan struct{}
	done    chan struct{}
	started bool
	once    sync.Once
}

// NewManager creates an empty manager. Register every cache before
// calling StartCleanup.
func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup loop.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			total := 0
			for _, c := range m.caches {
				total += c.CleanExpired()
			}
			if total > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", total)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop shuts the cleanup loop down and waits for it to finish. Safe to
// call more than once, and before StartCleanup.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
		if m.started {
			<-m.done
		}
	})
}
