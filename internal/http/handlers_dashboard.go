// Package http exposes the accounts-payable ledger as a JSON API.
//
// This file implements the two read views. Both are cached per filter
// with a short TTL; mutations purge the caches wholesale.

package http

import (
	"log/slog"
	"net/http"

	"fornitori/internal/core"
)

type bucketCounts struct {
	Merchandise     int `json:"merchandise"`
	PayableServices int `json:"payable_services"`
}

type dashboardResponse struct {
	Merchandise      []invoicePayload  `json:"merchandise"`
	PayableServices  []invoicePayload  `json:"payable_services"`
	Totals           core.BucketTotals `json:"totals"`
	Counts           bucketCounts      `json:"counts"`
	OrphanedInvoices int               `json:"orphaned_invoices"`
}

type historyResponse struct {
	Invoices         []invoicePayload `json:"invoices"`
	TotalSettled     core.Money       `json:"total_settled"`
	Count            int              `json:"count"`
	OrphanedInvoices int              `json:"orphaned_invoices"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r.URL.Query())
	key := filterKey(f)

	view, found := s.dashboardCache.Get(key)
	if found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "key", key)
	} else {
		view = s.ledger.Dashboard(r.Context(), f)
		s.dashboardCache.Set(key, view)
	}

	writeJSON(w, r, http.StatusOK, dashboardResponse{
		Merchandise:     toPayloads(view.Dashboard.Merchandise),
		PayableServices: toPayloads(view.Dashboard.PayableServices),
		Totals:          view.Totals,
		Counts: bucketCounts{
			Merchandise:     len(view.Dashboard.Merchandise),
			PayableServices: len(view.Dashboard.PayableServices),
		},
		OrphanedInvoices: view.Orphans,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r.URL.Query())
	key := filterKey(f)

	view, found := s.historyCache.Get(key)
	if found {
		slog.DebugContext(r.Context(), "History cache hit", "key", key)
	} else {
		view = s.ledger.History(r.Context(), f)
		s.historyCache.Set(key, view)
	}

	writeJSON(w, r, http.StatusOK, historyResponse{
		Invoices:         toPayloads(view.Invoices),
		TotalSettled:     view.Total,
		Count:            len(view.Invoices),
		OrphanedInvoices: view.Orphans,
	})
}
