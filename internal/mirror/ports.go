// Package mirror pushes dataset snapshots to external destinations: a
// backup directory on disk and a Google spreadsheet. Targets are
// replace-on-write; every snapshot carries the full dataset, so a lost
// or duplicate delivery costs nothing.
package mirror

import (
	"context"

	"fornitori/internal/backup"
)

// Target is a snapshot destination.
type Target interface {
	// Name identifies the target in logs.
	Name() string
	// Write replaces the target's contents with the document.
	Write(ctx context.Context, doc backup.Document) error
}
