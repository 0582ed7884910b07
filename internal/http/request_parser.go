// Package http exposes the accounts-payable ledger as a JSON API.
//
// This file implements parsing of query parameters and request bodies.
// It consolidates the filter extraction shared by the dashboard and
// history endpoints.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fornitori/internal/core"
)

// parseFilter extracts the view filter from query parameters. All
// criteria are optional; unparseable values mean no restriction rather
// than an error, so a mistyped month in the URL still renders a page.
//
// Recognized parameters:
//
//	search      substring match on the supplier name
//	month       1-12
//	year        e.g. 2025
//	from, to    inclusive date bounds, "2006-01-02"
//	merchandise "true" or "1" keeps merchandise suppliers only
func parseFilter(query url.Values) core.Filter {
	var f core.Filter

	f.Search = strings.TrimSpace(query.Get("search"))

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			f.Month = m
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 {
			f.Year = y
		}
	}

	if v := core.Date(strings.TrimSpace(query.Get("from"))); v != "" && v.Valid() {
		f.DateFrom = v
	}
	if v := core.Date(strings.TrimSpace(query.Get("to"))); v != "" && v.Valid() {
		f.DateTo = v
	}

	switch strings.TrimSpace(query.Get("merchandise")) {
	case "true", "1":
		f.OnlyMerchandise = true
	}

	return f
}

// filterKey canonicalizes a filter into a cache key. Two requests that
// parse to the same filter share a cache entry even when their query
// strings differ.
func filterKey(f core.Filter) string {
	return strings.ToLower(f.Search) + "|" +
		strconv.Itoa(f.Month) + "|" +
		strconv.Itoa(f.Year) + "|" +
		string(f.DateFrom) + "|" +
		string(f.DateTo) + "|" +
		strconv.FormatBool(f.OnlyMerchandise)
}

// decodeJSON reads a bounded request body into dst. The limit keeps a
// hostile client from feeding the decoder an unbounded document.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyLen)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
