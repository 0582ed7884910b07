// Package store defines the persistence ports the ledger core consumes.
// Gateways (SQLite, in-memory) implement them; everything above talks to
// the interfaces only.
package store

import (
	"context"
	"errors"

	"fornitori/internal/core"
)

// ErrNotFound reports a delete or lookup aimed at a missing record,
// distinct from an empty result set.
var ErrNotFound = errors.New("record not found")

// Ports for persistence gateways.
type (
	SupplierStore interface {
		// ListSuppliers returns every supplier ordered by name ascending.
		ListSuppliers(ctx context.Context) ([]core.Supplier, error)
		// UpsertSupplier creates the supplier (assigning an id when none
		// is supplied) or overwrites the full record at its id, and
		// returns the stored value.
		UpsertSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error)
		// DeleteSupplier removes the supplier and cascades to every
		// invoice referencing it.
		DeleteSupplier(ctx context.Context, id string) error
	}

	InvoiceStore interface {
		// ListInvoices returns every invoice with its rows, in no
		// particular order; ordering is the query engine's job.
		ListInvoices(ctx context.Context) ([]core.Invoice, error)
		// UpsertInvoice creates the invoice (assigning id and creation
		// date when absent) or overwrites the full record, rows
		// included. The creation date is set at first save and kept on
		// updates.
		UpsertInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error)
		DeleteInvoice(ctx context.Context, id string) error
	}

	Wiper interface {
		// DeleteAll removes every supplier and every invoice. Imports
		// call it before replaying a document.
		DeleteAll(ctx context.Context) error
	}

	// Gateway is the full persistence surface the application needs.
	Gateway interface {
		SupplierStore
		InvoiceStore
		Wiper
	}
)
