package core

type (
	// InvoiceWithSupplier pairs an invoice with its resolved supplier so
	// a view can be rendered and classified without further lookups. It
	// is always recomputed from current data, never stored.
	InvoiceWithSupplier struct {
		Invoice  Invoice  `json:"invoice"`
		Supplier Supplier `json:"supplier"`
	}
)

// Enrich joins invoices to their suppliers by ID. Invoices whose
// supplier cannot be resolved are returned separately as orphans so
// callers can count or log them; they never reach a dashboard or
// history view.
func Enrich(invoices []Invoice, suppliers []Supplier) (enriched []InvoiceWithSupplier, orphans []Invoice) {
	byID := make(map[string]Supplier, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID] = s
	}
	for _, inv := range invoices {
		supplier, ok := byID[inv.SupplierID]
		if !ok {
			orphans = append(orphans, inv)
			continue
		}
		enriched = append(enriched, InvoiceWithSupplier{Invoice: inv, Supplier: supplier})
	}
	return enriched, orphans
}

// Merchandise reports whether an open invoice posts to the merchandise
// bucket: its supplier carries the merchandise flag. The balance sign
// does not matter here.
func (iws InvoiceWithSupplier) Merchandise() bool {
	return iws.Supplier.IsMerchandise
}

// PayableService reports whether an open invoice posts to the
// payable-services bucket: a non-merchandise supplier still owed a
// strictly positive amount. Overpaid services invoices are open but not
// payable, so they fall out of both buckets.
func (iws InvoiceWithSupplier) PayableService() bool {
	return !iws.Supplier.IsMerchandise && iws.Invoice.Balance().IsPositive()
}
