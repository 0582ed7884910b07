// Package core provides the accounts-payable domain model: suppliers,
// invoices, ledger rows, and the balance arithmetic built on them.
//
// This file contains the Money type and its wire format. Amounts are
// integer cents internally and plain two-decimal numbers on the wire.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in integer cents. Keeping cents instead of
// floats makes settlement checks exact: an invoice is settled only when
// credits and debits cancel to the cent.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string to Money with half-up rounding on
// the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values are rejected: ledger rows record charges and payments
// as separate non-negative columns. Zero is allowed, a row may carry
// only a credit or only a debit.
//
// Examples:
//   ParseMoney("12.34")  -> 1234 cents, nil
//   ParseMoney("12,34")  -> 1234 cents, nil
//   ParseMoney("12.345") -> 1235 cents, nil (rounds up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, s)
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// String formats the amount with two decimals, e.g. "12.34".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// MarshalJSON emits the amount as a bare number with two decimals
// (1234 cents -> 12.34), the format backups and the API share.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(m.Cents, -2).StringFixed(2)), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else
// (null, objects, garbage) coerces to zero instead of failing: restored
// documents may carry malformed amounts and an import must not stop on
// them.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			m.Cents = 0
			return nil
		}
		s = strings.TrimSpace(quoted)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		m.Cents = 0
		return nil
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
