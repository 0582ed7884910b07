// Package http exposes the accounts-payable ledger as a JSON API.
//
// This file implements the backup endpoints. Import is the one
// operation where a server error can mean data loss: the restore wipes
// before it writes, so its failure modes get distinct status codes.

package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fornitori/internal/backup"
	applog "fornitori/internal/log"
)

type importResponse struct {
	Suppliers int `json:"suppliers"`
	Invoices  int `json:"invoices"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ledger.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not export dataset")
		return
	}

	data, err := doc.Encode()
	if err != nil {
		slog.ErrorContext(r.Context(), "Export encoding failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not encode dataset")
		return
	}

	filename := "fornitori-" + time.Now().UTC().Format("20060102-150405") + ".json"
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBodyLen)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read request body")
		return
	}

	// Structural validation happens before anything is touched, so a
	// rejected document leaves the dataset exactly as it was.
	doc, err := backup.Decode(data)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidDocument) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.ledger.Import(r.Context(), doc); err != nil {
		// Past this point the old dataset may already be wiped. The
		// client has to retry the import, not assume anything survived.
		slog.ErrorContext(r.Context(), "Import failed after validation", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "import failed, dataset may be incomplete")
		return
	}

	s.invalidateViews()
	writeJSON(w, r, http.StatusOK, importResponse{
		Suppliers: len(doc.Suppliers),
		Invoices:  len(doc.Invoices),
	})
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Wipe(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Database wipe failed", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not wipe database")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}
