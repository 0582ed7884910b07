// Package http exposes the accounts-payable ledger as a JSON API.
//
// This file implements the response helpers shared by all handlers, so
// status codes and error envelopes stay consistent across endpoints.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse is the envelope every failed request carries.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Serialization failures
// are logged and turn into a bare 500: by then the status line may
// already be out, so there is nothing better to send.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Response encoding failed", "error", err, "url", r.URL.Path)
	}
}

// writeError sends the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}
