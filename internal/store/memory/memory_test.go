package memory

import (
	"context"
	"errors"
	"testing"

	"fornitori/internal/core"
	"fornitori/internal/store"
)

func TestUpsertSupplierAssignsID(t *testing.T) {
	s := New()
	ctx := context.Background()

	saved, err := s.UpsertSupplier(ctx, core.Supplier{Name: "Rossi SRL"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected assigned id")
	}

	saved.Notes = "pagamento 30gg"
	again, err := s.UpsertSupplier(ctx, saved)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != saved.ID {
		t.Fatalf("id changed on update: %s -> %s", saved.ID, again.ID)
	}

	list, err := s.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Notes != "pagamento 30gg" {
		t.Fatalf("expected overwritten record, got %+v", list)
	}
}

func TestListSuppliersSortedByName(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, name := range []string{"zeta", "Alfa", "mare"} {
		if _, err := s.UpsertSupplier(ctx, core.Supplier{Name: name}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}
	list, err := s.ListSuppliers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].Name != "Alfa" || list[1].Name != "mare" || list[2].Name != "zeta" {
		t.Fatalf("expected case-insensitive name order, got %+v", list)
	}
}

func TestUpsertInvoiceLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	sup, _ := s.UpsertSupplier(ctx, core.Supplier{Name: "Rossi"})
	inv := core.Invoice{
		SupplierID: sup.ID,
		Rows:       []core.InvoiceRow{{ID: "r1", Date: core.Date("2025-01-10"), Credit: core.Money{Cents: 100}}},
	}

	saved, err := s.UpsertInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID == "" || saved.CreationDate.IsZero() {
		t.Fatalf("expected id and creation date assigned, got %+v", saved)
	}

	// Updates replace rows but keep the creation date.
	created := saved.CreationDate
	saved.Rows = append(saved.Rows, core.InvoiceRow{ID: "r2", Date: core.Date("2025-02-10"), Debit: core.Money{Cents: 100}})
	updated, err := s.UpsertInvoice(ctx, saved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreationDate.Equal(created) {
		t.Fatalf("creation date changed on update")
	}

	list, err := s.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Rows) != 2 {
		t.Fatalf("expected 1 invoice with 2 rows, got %+v", list)
	}
}

func TestUpsertInvoicePreservesGivenID(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Import path: ids and creation dates arrive already set.
	inv := core.Invoice{
		ID:         "imported-1",
		SupplierID: "sup-1",
		Rows:       []core.InvoiceRow{{Date: core.Date("2024-12-01"), Credit: core.Money{Cents: 500}}},
	}
	saved, err := s.UpsertInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID != "imported-1" {
		t.Fatalf("expected preserved id, got %s", saved.ID)
	}
}

func TestDeleteSupplierCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	sup, _ := s.UpsertSupplier(ctx, core.Supplier{Name: "Rossi"})
	other, _ := s.UpsertSupplier(ctx, core.Supplier{Name: "Bianchi"})
	s.UpsertInvoice(ctx, core.Invoice{SupplierID: sup.ID, Rows: []core.InvoiceRow{{Date: core.Date("2025-01-01"), Credit: core.Money{Cents: 1}}}})
	s.UpsertInvoice(ctx, core.Invoice{SupplierID: sup.ID, Rows: []core.InvoiceRow{{Date: core.Date("2025-01-02"), Credit: core.Money{Cents: 2}}}})
	s.UpsertInvoice(ctx, core.Invoice{SupplierID: other.ID, Rows: []core.InvoiceRow{{Date: core.Date("2025-01-03"), Credit: core.Money{Cents: 3}}}})

	if err := s.DeleteSupplier(ctx, sup.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	invoices, _ := s.ListInvoices(ctx)
	for _, inv := range invoices {
		if inv.SupplierID == sup.ID {
			t.Fatalf("cascade left invoice %s behind", inv.ID)
		}
	}
	if len(invoices) != 1 {
		t.Fatalf("expected 1 surviving invoice, got %d", len(invoices))
	}
}

func TestDeleteMissing(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.DeleteSupplier(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteInvoice(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	sup, _ := s.UpsertSupplier(ctx, core.Supplier{Name: "Rossi"})
	s.UpsertInvoice(ctx, core.Invoice{SupplierID: sup.ID, Rows: []core.InvoiceRow{{Date: core.Date("2025-01-01"), Credit: core.Money{Cents: 1}}}})

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	suppliers, _ := s.ListSuppliers(ctx)
	invoices, _ := s.ListInvoices(ctx)
	if len(suppliers) != 0 || len(invoices) != 0 {
		t.Fatalf("expected empty store, got %d/%d", len(suppliers), len(invoices))
	}
}

func TestReturnedInvoiceIsDetached(t *testing.T) {
	s := New()
	ctx := context.Background()

	sup, _ := s.UpsertSupplier(ctx, core.Supplier{Name: "Rossi"})
	s.UpsertInvoice(ctx, core.Invoice{SupplierID: sup.ID, Rows: []core.InvoiceRow{{Date: core.Date("2025-01-01"), Credit: core.Money{Cents: 100}}}})

	first, _ := s.ListInvoices(ctx)
	first[0].Rows[0].Credit = core.Money{Cents: 999999}

	second, _ := s.ListInvoices(ctx)
	if second[0].Rows[0].Credit.Cents != 100 {
		t.Fatalf("mutation through returned slice leaked into the store")
	}
}
