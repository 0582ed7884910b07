// Package memory provides an in-memory gateway for development and
// tests. It mirrors the SQLite gateway's contract, cascade included,
// without touching disk.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fornitori/internal/core"
	"fornitori/internal/store"
)

type Store struct {
	mu        sync.RWMutex
	suppliers map[string]core.Supplier
	invoices  map[string]core.Invoice
}

func New() *Store {
	return &Store{
		suppliers: make(map[string]core.Supplier),
		invoices:  make(map[string]core.Invoice),
	}
}

func (s *Store) ListSuppliers(_ context.Context) ([]core.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) UpsertSupplier(_ context.Context, sup core.Supplier) (core.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sup.ID == "" {
		sup.ID = uuid.NewString()
	}
	s.suppliers[sup.ID] = sup
	return sup, nil
}

func (s *Store) DeleteSupplier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[id]; !ok {
		return fmt.Errorf("delete supplier %s: %w", id, store.ErrNotFound)
	}
	delete(s.suppliers, id)
	for invID, inv := range s.invoices {
		if inv.SupplierID == id {
			delete(s.invoices, invID)
		}
	}
	return nil
}

func (s *Store) ListInvoices(_ context.Context) ([]core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out, nil
}

func (s *Store) UpsertInvoice(_ context.Context, inv core.Invoice) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if existing, ok := s.invoices[inv.ID]; ok {
		// Creation date is set once; updates keep the stored one.
		inv.CreationDate = existing.CreationDate
	} else if inv.CreationDate.IsZero() {
		inv.CreationDate = time.Now().UTC()
	}
	s.invoices[inv.ID] = cloneInvoice(inv)
	return inv, nil
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return fmt.Errorf("delete invoice %s: %w", id, store.ErrNotFound)
	}
	delete(s.invoices, id)
	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = make(map[string]core.Supplier)
	s.invoices = make(map[string]core.Invoice)
	return nil
}

// cloneInvoice copies the row slice so callers cannot mutate stored
// state through a returned invoice.
func cloneInvoice(inv core.Invoice) core.Invoice {
	rows := make([]core.InvoiceRow, len(inv.Rows))
	copy(rows, inv.Rows)
	inv.Rows = rows
	return inv
}
