// Package http exposes the accounts-payable ledger as a JSON API.
//
// This file implements the supplier and invoice CRUD endpoints. Every
// successful mutation purges the view caches before responding.

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fornitori/internal/core"
	applog "fornitori/internal/log"
	"fornitori/internal/store"
)

// invoicePayload decorates an invoice with its supplier and the figures
// every view needs, so clients never recompute balances themselves.
type invoicePayload struct {
	Invoice       core.Invoice  `json:"invoice"`
	Supplier      core.Supplier `json:"supplier"`
	Balance       core.Money    `json:"balance"`
	InitialAmount core.Money    `json:"initial_amount"`
	Settled       bool          `json:"settled"`
}

func toPayload(iws core.InvoiceWithSupplier) invoicePayload {
	return invoicePayload{
		Invoice:       iws.Invoice,
		Supplier:      iws.Supplier,
		Balance:       iws.Invoice.Balance(),
		InitialAmount: iws.Invoice.InitialAmount(),
		Settled:       iws.Invoice.Settled(),
	}
}

func toPayloads(list []core.InvoiceWithSupplier) []invoicePayload {
	out := make([]invoicePayload, len(list))
	for i, iws := range list {
		out[i] = toPayload(iws)
	}
	return out
}

// isValidationError reports whether err stems from domain validation
// rather than storage, mapping it to 422 instead of 500.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptySupplierName,
		core.ErrNameTooLong,
		core.ErrMissingSupplierRef,
		core.ErrNoRows,
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers := s.ledger.Suppliers(r.Context())
	if suppliers == nil {
		suppliers = []core.Supplier{}
	}
	writeJSON(w, r, http.StatusOK, suppliers)
}

func (s *Server) handleSaveSupplier(w http.ResponseWriter, r *http.Request) {
	var supplier core.Supplier
	if err := decodeJSON(w, r, &supplier); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	saved, err := s.ledger.SaveSupplier(r.Context(), supplier)
	if err != nil {
		if isValidationError(err) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Supplier save failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not save supplier")
		return
	}

	s.invalidateViews()
	writeJSON(w, r, http.StatusOK, saved)
}

func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.DeleteSupplier(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "supplier not found")
			return
		}
		slog.ErrorContext(r.Context(), "Supplier delete failed", applog.FieldError, err, applog.FieldSupplierID, id)
		writeError(w, r, http.StatusInternalServerError, "could not delete supplier")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, orphans := s.ledger.Invoices(r.Context())
	writeJSON(w, r, http.StatusOK, struct {
		Invoices         []invoicePayload `json:"invoices"`
		OrphanedInvoices int              `json:"orphaned_invoices"`
	}{
		Invoices:         toPayloads(invoices),
		OrphanedInvoices: orphans,
	})
}

func (s *Server) handleSaveInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice core.Invoice
	if err := decodeJSON(w, r, &invoice); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	saved, err := s.ledger.SaveInvoice(r.Context(), invoice)
	if err != nil {
		if isValidationError(err) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Invoice save failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not save invoice")
		return
	}

	s.invalidateViews()
	writeJSON(w, r, http.StatusOK, saved)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.DeleteInvoice(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "invoice not found")
			return
		}
		slog.ErrorContext(r.Context(), "Invoice delete failed", applog.FieldError, err, applog.FieldInvoiceID, id)
		writeError(w, r, http.StatusInternalServerError, "could not delete invoice")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}
