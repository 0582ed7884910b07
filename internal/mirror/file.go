package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fornitori/internal/backup"
)

const latestName = "latest.json"

// DirTarget writes snapshots to a directory: one timestamped file per
// snapshot plus latest.json, updated by atomic rename so readers never
// see a half-written document.
type DirTarget struct {
	dir  string
	keep int
}

var _ Target = (*DirTarget)(nil)

// NewDirTarget creates a directory target. keep bounds how many
// timestamped snapshots are retained; zero keeps them all.
func NewDirTarget(dir string, keep int) (*DirTarget, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &DirTarget{dir: dir, keep: keep}, nil
}

func (t *DirTarget) Name() string {
	return "dir:" + t.dir
}

func (t *DirTarget) Write(ctx context.Context, doc backup.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	stamped := fmt.Sprintf("fornitori_%s.json", doc.Timestamp.UTC().Format("20060102T150405Z"))
	if err := writeAtomic(filepath.Join(t.dir, stamped), data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", stamped, err)
	}
	if err := writeAtomic(filepath.Join(t.dir, latestName), data); err != nil {
		return fmt.Errorf("write %s: %w", latestName, err)
	}

	if err := t.prune(); err != nil {
		// A failed prune never fails the snapshot; disk housekeeping can
		// catch up on the next write.
		slog.WarnContext(ctx, "Snapshot prune failed", "dir", t.dir, "error", err)
	}

	slog.InfoContext(ctx, "Snapshot written to directory",
		"dir", t.dir,
		"file", stamped,
		"suppliers", len(doc.Suppliers),
		"invoices", len(doc.Invoices))
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// prune removes the oldest timestamped snapshots beyond the keep limit.
func (t *DirTarget) prune() error {
	if t.keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return err
	}
	var stamped []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, "fornitori_") && strings.HasSuffix(name, ".json") {
			stamped = append(stamped, name)
		}
	}
	if len(stamped) <= t.keep {
		return nil
	}
	// Timestamps in the name sort lexicographically in time order.
	sort.Strings(stamped)
	for _, name := range stamped[:len(stamped)-t.keep] {
		if err := os.Remove(filepath.Join(t.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
