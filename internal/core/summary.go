package core

// BucketTotals carries the aggregate figures the dashboard reports
// alongside its two buckets.
type BucketTotals struct {
	Merchandise     Money `json:"merchandise"`
	PayableServices Money `json:"payable_services"`
}

// TotalBalance sums outstanding balances across a bucket. An empty
// bucket totals to zero.
func TotalBalance(list []InvoiceWithSupplier) Money {
	var total Money
	for _, iws := range list {
		total = total.Add(iws.Invoice.Balance())
	}
	return total
}

// TotalInitialAmount sums originally invoiced amounts across a bucket,
// the "total settled" figure the history view reports.
func TotalInitialAmount(list []InvoiceWithSupplier) Money {
	var total Money
	for _, iws := range list {
		total = total.Add(iws.Invoice.InitialAmount())
	}
	return total
}

// Totals computes the per-bucket aggregates for a dashboard.
func (d Dashboard) Totals() BucketTotals {
	return BucketTotals{
		Merchandise:     TotalBalance(d.Merchandise),
		PayableServices: TotalBalance(d.PayableServices),
	}
}
