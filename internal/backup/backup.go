package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fornitori/internal/core"
	"fornitori/internal/store"
)

// Export snapshots the full dataset. The two reads are independent, so
// they run in parallel and the document is assembled once both land.
func Export(ctx context.Context, gw store.Gateway) (Document, error) {
	var (
		suppliers []core.Supplier
		invoices  []core.Invoice
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if suppliers, err = gw.ListSuppliers(ctx); err != nil {
			return fmt.Errorf("fetch suppliers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if invoices, err = gw.ListInvoices(ctx); err != nil {
			return fmt.Errorf("fetch invoices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Document{}, err
	}

	// An empty dataset must still export as [], not null, or the
	// document would fail its own structural validation on re-import.
	if suppliers == nil {
		suppliers = []core.Supplier{}
	}
	if invoices == nil {
		invoices = []core.Invoice{}
	}

	return Document{
		Suppliers: suppliers,
		Invoices:  invoices,
		Timestamp: time.Now().UTC(),
		Version:   FormatVersion,
	}, nil
}

// Import replaces the dataset with the document's contents: validate,
// wipe, then bulk-insert suppliers and invoices with their original ids
// so every supplier_id reference survives.
//
// Validation happens before any mutation. A failure after the wipe
// leaves the dataset partially restored with no automatic rollback; the
// caller recovers by importing again.
func Import(ctx context.Context, gw store.Gateway, doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if err := gw.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe dataset: %w", err)
	}
	for _, s := range doc.Suppliers {
		if _, err := gw.UpsertSupplier(ctx, s); err != nil {
			return fmt.Errorf("restore supplier %s: %w", s.ID, err)
		}
	}
	for _, inv := range doc.Invoices {
		if _, err := gw.UpsertInvoice(ctx, inv); err != nil {
			return fmt.Errorf("restore invoice %s: %w", inv.ID, err)
		}
	}

	slog.InfoContext(ctx, "Dataset restored from backup",
		"suppliers", len(doc.Suppliers),
		"invoices", len(doc.Invoices),
		"document_timestamp", doc.Timestamp)
	return nil
}
