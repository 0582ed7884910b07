package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar date in ISO-8601 form ("2006-01-02").
	// It is kept as a string on purpose: range filtering compares dates
	// lexicographically, which matches calendar order for this format,
	// and round-tripping through backups must not reformat stored values.
	Date string

	// Supplier is an accounts-payable counterparty. IsMerchandise marks
	// suppliers whose open invoices post to the merchandise bucket
	// instead of the generic payable-services bucket.
	Supplier struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		IBAN          string `json:"iban"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
		Notes         string `json:"notes"`
		IsMerchandise bool   `json:"is_merchandise"`
	}

	// InvoiceRow is a single ledger line: a charge (credit), a payment
	// (debit), or both. Rows exist only inside their invoice and are
	// replaced wholesale whenever the invoice is saved.
	InvoiceRow struct {
		ID          string `json:"id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Protocol    string `json:"protocol"`
		Credit      Money  `json:"credit"`
		Debit       Money  `json:"debit"`
	}

	// Invoice is one registration for a supplier. Row order is insertion
	// order and is meaningful: the first row carries the original invoiced
	// amount and the date used for filtering and sorting.
	Invoice struct {
		ID           string       `json:"id"`
		SupplierID   string       `json:"supplier_id"`
		CreationDate time.Time    `json:"creation_date"`
		Rows         []InvoiceRow `json:"rows"`
	}
)

var (
	ErrEmptySupplierName  = errors.New("empty supplier name")
	ErrNameTooLong        = errors.New("supplier name too long")
	ErrMissingSupplierRef = errors.New("missing supplier reference")
	ErrNoRows             = errors.New("invoice has no rows")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
)

const dateLayout = "2006-01-02"

// NewDate builds a Date from calendar components.
func NewDate(year, month, day int) Date {
	return Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(dateLayout))
}

// Today returns the current date in UTC.
func Today() Date {
	return Date(time.Now().UTC().Format(dateLayout))
}

func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

// Year returns the calendar year, or 0 when the date is malformed.
func (d Date) Year() int {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return 0
	}
	return t.Year()
}

// Month returns the calendar month (1-12), or 0 when the date is malformed.
func (d Date) Month() int {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return 0
	}
	return int(t.Month())
}

func (d Date) String() string {
	return string(d)
}

func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySupplierName
	}
	if len(s.Name) > 200 {
		return fmt.Errorf("%w (max 200 characters)", ErrNameTooLong)
	}
	return nil
}

func (r InvoiceRow) Validate() error {
	if !r.Date.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDate, string(r.Date))
	}
	if r.Credit.Cents < 0 || r.Debit.Cents < 0 {
		return fmt.Errorf("%w: credit and debit must not be negative", ErrInvalidAmount)
	}
	return nil
}

// Validate checks the invariants enforced on the interactive save path.
// Backup import bypasses it deliberately: restored data is replayed as
// exported, not re-validated.
func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.SupplierID) == "" {
		return ErrMissingSupplierRef
	}
	if len(inv.Rows) == 0 {
		return ErrNoRows
	}
	for i, row := range inv.Rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}
