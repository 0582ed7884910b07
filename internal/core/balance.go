package core

// Balance is the outstanding amount of the invoice: the sum of credit
// minus debit over all rows. An invoice with no rows balances to zero.
// Positive means the supplier is still owed money, negative means the
// invoice was overpaid.
func (inv Invoice) Balance() Money {
	var total Money
	for _, row := range inv.Rows {
		total = total.Add(row.Credit).Sub(row.Debit)
	}
	return total
}

// InitialAmount is the credit of the first row: the amount originally
// invoiced, regardless of payments recorded in later rows. Zero when the
// invoice has no rows.
func (inv Invoice) InitialAmount() Money {
	if len(inv.Rows) == 0 {
		return Money{}
	}
	return inv.Rows[0].Credit
}

// FirstRowDate is the registration date of the invoice, taken from the
// first row. Filtering and ordering both key on it. Empty when the
// invoice has no rows.
func (inv Invoice) FirstRowDate() Date {
	if len(inv.Rows) == 0 {
		return ""
	}
	return inv.Rows[0].Date
}

// Open reports whether anything is outstanding, in either direction:
// overpaid invoices count as open until corrected.
func (inv Invoice) Open() bool {
	return !inv.Balance().IsZero()
}

// Settled reports whether credits and debits cancel exactly.
func (inv Invoice) Settled() bool {
	return inv.Balance().IsZero()
}
