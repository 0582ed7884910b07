package core

import (
	"sort"
	"strings"
)

type (
	// Filter narrows a set of enriched invoices. Every criterion is
	// optional and they combine with AND; the zero Filter matches
	// everything.
	Filter struct {
		// Search matches case-insensitively as a substring of the
		// supplier name.
		Search string
		// Month (1-12) and Year match against the first row's date.
		// Zero means no restriction. An invoice whose first-row date is
		// malformed never matches a month or year filter.
		Month int
		Year  int
		// DateFrom and DateTo bound the first row's date, inclusive on
		// both ends, compared lexicographically. Empty means unbounded.
		DateFrom Date
		DateTo   Date
		// OnlyMerchandise keeps merchandise suppliers only.
		OnlyMerchandise bool
	}

	// Dashboard is the open-items view: open invoices split into the
	// two classification buckets, each filtered independently and
	// ordered by first-row date, oldest first.
	Dashboard struct {
		Merchandise     []InvoiceWithSupplier `json:"merchandise"`
		PayableServices []InvoiceWithSupplier `json:"payable_services"`
	}
)

// Matches reports whether the invoice passes every set criterion.
func (f Filter) Matches(iws InvoiceWithSupplier) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(iws.Supplier.Name), strings.ToLower(f.Search)) {
		return false
	}
	first := iws.Invoice.FirstRowDate()
	if f.Month != 0 && first.Month() != f.Month {
		return false
	}
	if f.Year != 0 && first.Year() != f.Year {
		return false
	}
	if f.DateFrom != "" && first < f.DateFrom {
		return false
	}
	if f.DateTo != "" && first > f.DateTo {
		return false
	}
	if f.OnlyMerchandise && !iws.Supplier.IsMerchandise {
		return false
	}
	return true
}

// Apply returns the invoices passing the filter, preserving input order.
func (f Filter) Apply(list []InvoiceWithSupplier) []InvoiceWithSupplier {
	out := make([]InvoiceWithSupplier, 0, len(list))
	for _, iws := range list {
		if f.Matches(iws) {
			out = append(out, iws)
		}
	}
	return out
}

// BuildDashboard classifies open invoices into their buckets, filters
// each bucket, and sorts both ascending by first-row date.
func BuildDashboard(list []InvoiceWithSupplier, f Filter) Dashboard {
	var d Dashboard
	for _, iws := range list {
		if !iws.Invoice.Open() {
			continue
		}
		switch {
		case iws.Merchandise():
			d.Merchandise = append(d.Merchandise, iws)
		case iws.PayableService():
			d.PayableServices = append(d.PayableServices, iws)
		}
	}
	d.Merchandise = f.Apply(d.Merchandise)
	d.PayableServices = f.Apply(d.PayableServices)
	sortByFirstRowDate(d.Merchandise, true)
	sortByFirstRowDate(d.PayableServices, true)
	return d
}

// BuildHistory returns settled invoices passing the filter, sorted
// descending by first-row date (most recent first).
func BuildHistory(list []InvoiceWithSupplier, f Filter) []InvoiceWithSupplier {
	settled := make([]InvoiceWithSupplier, 0, len(list))
	for _, iws := range list {
		if iws.Invoice.Settled() {
			settled = append(settled, iws)
		}
	}
	out := f.Apply(settled)
	sortByFirstRowDate(out, false)
	return out
}

// sortByFirstRowDate orders in place. The sort is stable so invoices
// sharing a date keep the order the source presented them in.
func sortByFirstRowDate(list []InvoiceWithSupplier, ascending bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a := list[i].Invoice.FirstRowDate()
		b := list[j].Invoice.FirstRowDate()
		if ascending {
			return a < b
		}
		return a > b
	})
}
