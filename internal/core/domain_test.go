package core

import (
	"errors"
	"strings"
	"testing"
)

func TestDateValid(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{Date("2025-12-31"), true},
		{Date("2025-02-30"), false}, // no such day
		{Date("31-12-2025"), false},
		{Date("2025-1-1"), false}, // missing zero padding
		{Date(""), false},
		{Date("garbage"), false},
	}
	for i, tc := range cases {
		if got := tc.d.Valid(); got != tc.ok {
			t.Fatalf("case %d (%q) expected %v, got %v", i, tc.d, tc.ok, got)
		}
	}
}

func TestDateYearMonth(t *testing.T) {
	d := Date("2024-03-15")
	if d.Year() != 2024 || d.Month() != 3 {
		t.Fatalf("expected 2024-03, got %d-%d", d.Year(), d.Month())
	}
	bad := Date("not-a-date")
	if bad.Year() != 0 || bad.Month() != 0 {
		t.Fatalf("malformed date expected 0/0, got %d/%d", bad.Year(), bad.Month())
	}
}

func TestNewDateFormatsISO(t *testing.T) {
	if got := NewDate(2025, 7, 4); got != Date("2025-07-04") {
		t.Fatalf("expected 2025-07-04, got %q", got)
	}
}

func TestSupplierValidate(t *testing.T) {
	if err := (Supplier{ID: "s1", Name: "Rossi SRL"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Supplier{ID: "s1", Name: "   "}).Validate(); !errors.Is(err, ErrEmptySupplierName) {
		t.Fatalf("expected ErrEmptySupplierName, got %v", err)
	}
	if err := (Supplier{ID: "s1", Name: strings.Repeat("x", 201)}).Validate(); err == nil {
		t.Fatalf("expected error for overlong name")
	}
}

func TestInvoiceRowValidate(t *testing.T) {
	good := InvoiceRow{ID: "r1", Date: Date("2025-01-10"), Credit: Money{Cents: 100}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		row  InvoiceRow
		want error
	}{
		{InvoiceRow{Date: Date("10/01/2025"), Credit: Money{Cents: 100}}, ErrInvalidDate},
		{InvoiceRow{Date: Date("2025-01-10"), Credit: Money{Cents: -1}}, ErrInvalidAmount},
		{InvoiceRow{Date: Date("2025-01-10"), Debit: Money{Cents: -50}}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.row.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestInvoiceValidate(t *testing.T) {
	good := Invoice{
		ID:         "i1",
		SupplierID: "s1",
		Rows: []InvoiceRow{
			{ID: "r1", Date: Date("2025-01-10"), Credit: Money{Cents: 100}},
		},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if err := (Invoice{Rows: good.Rows}).Validate(); !errors.Is(err, ErrMissingSupplierRef) {
		t.Fatalf("expected ErrMissingSupplierRef, got %v", err)
	}
	if err := (Invoice{SupplierID: "s1"}).Validate(); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}

	badRow := Invoice{
		SupplierID: "s1",
		Rows: []InvoiceRow{
			{ID: "r1", Date: Date("2025-01-10"), Credit: Money{Cents: 100}},
			{ID: "r2", Date: Date("bad"), Credit: Money{Cents: 1}},
		},
	}
	err := badRow.Validate()
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Fatalf("expected row index in error, got %q", err.Error())
	}
}
