package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fornitori/internal/amqp"
	"fornitori/internal/backup"
	"fornitori/internal/core"
	"fornitori/internal/store"
)

// EventPublisher pushes change notifications to the snapshot worker.
// *amqp.Client satisfies it in production.
type EventPublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// LedgerService handles supplier and invoice business logic on top of a
// storage gateway. Change notifications are best effort: a broker outage
// degrades mirroring, never data entry.
type LedgerService struct {
	gateway store.Gateway
	events  EventPublisher
}

// NewLedgerService creates a ledger service. events may be nil when no
// broker is configured; notifications are then skipped with a warning.
func NewLedgerService(gateway store.Gateway, events EventPublisher) *LedgerService {
	return &LedgerService{
		gateway: gateway,
		events:  events,
	}
}

// DashboardView is the open-invoices screen: both buckets already
// filtered, their balance totals, and the invoices left out of the join
// because their supplier is gone.
type DashboardView struct {
	Dashboard core.Dashboard
	Totals    core.BucketTotals
	Orphans   int
}

// HistoryView is the settled-invoices screen.
type HistoryView struct {
	Invoices []core.InvoiceWithSupplier
	Total    core.Money
	Orphans  int
}

// Dashboard loads the ledger and splits the open invoices into the
// merchandise and payable-services buckets, applying f to each bucket.
func (s *LedgerService) Dashboard(ctx context.Context, f core.Filter) DashboardView {
	ledger, orphans := s.loadLedger(ctx)
	dashboard := core.BuildDashboard(ledger, f)
	return DashboardView{
		Dashboard: dashboard,
		Totals:    dashboard.Totals(),
		Orphans:   orphans,
	}
}

// History loads the ledger and returns the settled invoices matching f,
// newest first, with the sum of their initial amounts.
func (s *LedgerService) History(ctx context.Context, f core.Filter) HistoryView {
	ledger, orphans := s.loadLedger(ctx)
	settled := core.BuildHistory(ledger, f)
	return HistoryView{
		Invoices: settled,
		Total:    core.TotalInitialAmount(settled),
		Orphans:  orphans,
	}
}

// Suppliers lists all suppliers ordered by name.
func (s *LedgerService) Suppliers(ctx context.Context) []core.Supplier {
	suppliers, err := s.gateway.ListSuppliers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load suppliers, serving empty list", "error", err)
		return nil
	}
	return suppliers
}

// Invoices lists all invoices joined with their suppliers, unfiltered.
func (s *LedgerService) Invoices(ctx context.Context) ([]core.InvoiceWithSupplier, int) {
	return s.loadLedger(ctx)
}

// SaveSupplier validates and stores a supplier, creating it when the ID
// is empty. The stored supplier is returned with its assigned ID.
func (s *LedgerService) SaveSupplier(ctx context.Context, supplier core.Supplier) (core.Supplier, error) {
	if err := supplier.Validate(); err != nil {
		return core.Supplier{}, fmt.Errorf("validate supplier: %w", err)
	}

	saved, err := s.gateway.UpsertSupplier(ctx, supplier)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("save supplier: %w", err)
	}

	slog.InfoContext(ctx, "Supplier saved", "id", saved.ID, "name", saved.Name)
	s.publishChange(ctx, amqp.SupplierUpserted, saved.ID)
	return saved, nil
}

// DeleteSupplier removes a supplier and all its invoices.
func (s *LedgerService) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.gateway.DeleteSupplier(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}

	slog.InfoContext(ctx, "Supplier deleted", "id", id)
	s.publishChange(ctx, amqp.SupplierDeleted, id)
	return nil
}

// SaveInvoice validates and stores an invoice, creating it when the ID
// is empty. Rows without an ID get one assigned here, so edits keep the
// identity of rows the user did not touch.
func (s *LedgerService) SaveInvoice(ctx context.Context, invoice core.Invoice) (core.Invoice, error) {
	if err := invoice.Validate(); err != nil {
		return core.Invoice{}, fmt.Errorf("validate invoice: %w", err)
	}

	for i := range invoice.Rows {
		if invoice.Rows[i].ID == "" {
			invoice.Rows[i].ID = uuid.NewString()
		}
	}

	saved, err := s.gateway.UpsertInvoice(ctx, invoice)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved",
		"id", saved.ID,
		"supplier_id", saved.SupplierID,
		"rows", len(saved.Rows),
		"balance_cents", saved.Balance().Cents)
	s.publishChange(ctx, amqp.InvoiceUpserted, saved.ID)
	return saved, nil
}

// DeleteInvoice removes a single invoice.
func (s *LedgerService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.gateway.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice deleted", "id", id)
	s.publishChange(ctx, amqp.InvoiceDeleted, id)
	return nil
}

// Export produces a full backup document. Unlike the view reads this
// does not degrade on gateway failure: an empty document written over a
// good backup would be worse than no backup at all.
func (s *LedgerService) Export(ctx context.Context) (backup.Document, error) {
	return backup.Export(ctx, s.gateway)
}

// Import replaces the whole dataset with the document's content.
func (s *LedgerService) Import(ctx context.Context, doc backup.Document) error {
	if err := backup.Import(ctx, s.gateway, doc); err != nil {
		return err
	}
	s.publishChange(ctx, amqp.DatasetReplaced, "")
	return nil
}

// Wipe deletes every supplier and invoice.
func (s *LedgerService) Wipe(ctx context.Context) error {
	if err := s.gateway.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe ledger: %w", err)
	}
	s.publishChange(ctx, amqp.DatasetReplaced, "")
	return nil
}

// loadLedger fetches suppliers and invoices in parallel and joins them.
// Read failures are logged and served as empty lists so the views stay
// up while the backend is unhappy.
func (s *LedgerService) loadLedger(ctx context.Context) ([]core.InvoiceWithSupplier, int) {
	var (
		suppliers []core.Supplier
		invoices  []core.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.gateway.ListSuppliers(gctx)
		if err != nil {
			slog.ErrorContext(gctx, "Failed to load suppliers, serving empty list", "error", err)
			return nil
		}
		suppliers = list
		return nil
	})
	g.Go(func() error {
		list, err := s.gateway.ListInvoices(gctx)
		if err != nil {
			slog.ErrorContext(gctx, "Failed to load invoices, serving empty list", "error", err)
			return nil
		}
		invoices = list
		return nil
	})
	_ = g.Wait() // reads degrade instead of returning errors

	ledger, orphans := core.Enrich(invoices, suppliers)
	if len(orphans) > 0 {
		slog.WarnContext(ctx, "Invoices reference missing suppliers",
			"count", len(orphans))
	}
	return ledger, len(orphans)
}

func (s *LedgerService) publishChange(ctx context.Context, kind amqp.ChangeKind, id string) {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not configured, skipping change notification",
			"kind", kind)
		return
	}

	msg := amqp.NewChangeMessage(kind, id)
	if err := s.events.PublishChange(ctx, msg); err != nil {
		// Don't fail the request when the broker is down - data entry
		// comes first, and the worker re-exports the full dataset anyway.
		slog.ErrorContext(ctx, "Failed to publish change notification",
			"kind", kind, "id", id, "error", err)
	}
}
