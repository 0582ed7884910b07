package core

import (
	"reflect"
	"testing"
)

func openInvoice(id, supplierID string, date Date, cents int64) Invoice {
	return Invoice{
		ID:         id,
		SupplierID: supplierID,
		Rows:       []InvoiceRow{{ID: id + "-r1", Date: date, Credit: Money{Cents: cents}}},
	}
}

func settledInvoice(id, supplierID string, date Date, cents int64) Invoice {
	inv := openInvoice(id, supplierID, date, cents)
	inv.Rows = append(inv.Rows, InvoiceRow{ID: id + "-r2", Date: date, Debit: Money{Cents: cents}})
	return inv
}

func TestFilterMatches(t *testing.T) {
	iws := InvoiceWithSupplier{
		Invoice:  openInvoice("i1", "s1", Date("2025-03-15"), 100),
		Supplier: Supplier{ID: "s1", Name: "Rossi Trasporti"},
	}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"zero filter matches", Filter{}, true},
		{"search substring", Filter{Search: "trasporti"}, true},
		{"search case-insensitive", Filter{Search: "ROSSI"}, true},
		{"search miss", Filter{Search: "bianchi"}, false},
		{"month hit", Filter{Month: 3}, true},
		{"month miss", Filter{Month: 4}, false},
		{"year hit", Filter{Year: 2025}, true},
		{"year miss", Filter{Year: 2024}, false},
		{"from inclusive", Filter{DateFrom: Date("2025-03-15")}, true},
		{"from excludes earlier", Filter{DateFrom: Date("2025-03-16")}, false},
		{"to inclusive", Filter{DateTo: Date("2025-03-15")}, true},
		{"to excludes later", Filter{DateTo: Date("2025-03-14")}, false},
		{"range hit", Filter{DateFrom: Date("2025-01-01"), DateTo: Date("2025-12-31")}, true},
		{"merchandise only misses services", Filter{OnlyMerchandise: true}, false},
		{"all criteria AND", Filter{Search: "rossi", Month: 3, Year: 2025, DateFrom: Date("2025-03-01")}, true},
		{"one failing criterion fails all", Filter{Search: "rossi", Month: 12}, false},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(iws); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestFilterMalformedDateNeverMatchesMonthYear(t *testing.T) {
	iws := InvoiceWithSupplier{
		Invoice:  Invoice{ID: "i1", SupplierID: "s1", Rows: []InvoiceRow{{Date: Date("yesterday"), Credit: Money{Cents: 1}}}},
		Supplier: Supplier{ID: "s1", Name: "Rossi"},
	}
	if (Filter{Month: 1}).Matches(iws) {
		t.Fatalf("malformed date must not match month filter")
	}
	if (Filter{Year: 2025}).Matches(iws) {
		t.Fatalf("malformed date must not match year filter")
	}
	if !(Filter{Search: "rossi"}).Matches(iws) {
		t.Fatalf("search does not depend on the date")
	}
}

func TestFilterIdempotent(t *testing.T) {
	suppliers := []Supplier{{ID: "s1", Name: "Alfa"}, {ID: "s2", Name: "Beta", IsMerchandise: true}}
	invoices := []Invoice{
		openInvoice("i1", "s1", Date("2025-01-10"), 100),
		openInvoice("i2", "s2", Date("2025-02-10"), 200),
		openInvoice("i3", "s1", Date("2024-05-01"), 300),
	}
	enriched, _ := Enrich(invoices, suppliers)

	f := Filter{Year: 2025}
	once := f.Apply(enriched)
	twice := f.Apply(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter not idempotent: %+v vs %+v", once, twice)
	}
}

func TestBuildDashboard(t *testing.T) {
	suppliers := []Supplier{
		{ID: "m1", Name: "Magazzino Uno", IsMerchandise: true},
		{ID: "v1", Name: "Servizi Uno"},
	}
	invoices := []Invoice{
		openInvoice("merch-new", "m1", Date("2025-03-01"), 100),
		openInvoice("merch-old", "m1", Date("2025-01-01"), 200),
		openInvoice("svc", "v1", Date("2025-02-01"), 300),
		settledInvoice("done", "v1", Date("2025-01-15"), 400), // settled, excluded
		{ // overpaid services invoice, in neither bucket
			ID: "over", SupplierID: "v1",
			Rows: []InvoiceRow{
				{Date: Date("2025-01-20"), Credit: Money{Cents: 100}},
				{Date: Date("2025-01-25"), Debit: Money{Cents: 500}},
			},
		},
	}
	enriched, _ := Enrich(invoices, suppliers)

	d := BuildDashboard(enriched, Filter{})
	if len(d.Merchandise) != 2 {
		t.Fatalf("expected 2 merchandise invoices, got %d", len(d.Merchandise))
	}
	// Ascending by first-row date.
	if d.Merchandise[0].Invoice.ID != "merch-old" || d.Merchandise[1].Invoice.ID != "merch-new" {
		t.Fatalf("merchandise order wrong: %s, %s", d.Merchandise[0].Invoice.ID, d.Merchandise[1].Invoice.ID)
	}
	if len(d.PayableServices) != 1 || d.PayableServices[0].Invoice.ID != "svc" {
		t.Fatalf("payable services wrong: %+v", d.PayableServices)
	}
}

func TestBuildDashboardFiltersPerBucket(t *testing.T) {
	suppliers := []Supplier{
		{ID: "m1", Name: "Magazzino", IsMerchandise: true},
		{ID: "v1", Name: "Servizi"},
	}
	invoices := []Invoice{
		openInvoice("m-jan", "m1", Date("2025-01-10"), 100),
		openInvoice("m-feb", "m1", Date("2025-02-10"), 100),
		openInvoice("v-jan", "v1", Date("2025-01-20"), 100),
	}
	enriched, _ := Enrich(invoices, suppliers)

	d := BuildDashboard(enriched, Filter{Month: 1})
	if len(d.Merchandise) != 1 || d.Merchandise[0].Invoice.ID != "m-jan" {
		t.Fatalf("expected only m-jan in merchandise, got %+v", d.Merchandise)
	}
	if len(d.PayableServices) != 1 || d.PayableServices[0].Invoice.ID != "v-jan" {
		t.Fatalf("expected only v-jan in services, got %+v", d.PayableServices)
	}
}

func TestBuildHistory(t *testing.T) {
	suppliers := []Supplier{{ID: "s1", Name: "Alfa"}}
	invoices := []Invoice{
		settledInvoice("h-old", "s1", Date("2024-06-01"), 100),
		settledInvoice("h-new", "s1", Date("2025-06-01"), 200),
		openInvoice("still-open", "s1", Date("2025-07-01"), 300),
	}
	enriched, _ := Enrich(invoices, suppliers)

	hist := BuildHistory(enriched, Filter{})
	if len(hist) != 2 {
		t.Fatalf("expected 2 settled invoices, got %d", len(hist))
	}
	// Descending: most recent first.
	if hist[0].Invoice.ID != "h-new" || hist[1].Invoice.ID != "h-old" {
		t.Fatalf("history order wrong: %s, %s", hist[0].Invoice.ID, hist[1].Invoice.ID)
	}

	onlyOld := BuildHistory(enriched, Filter{Year: 2024})
	if len(onlyOld) != 1 || onlyOld[0].Invoice.ID != "h-old" {
		t.Fatalf("expected only h-old for 2024, got %+v", onlyOld)
	}
}

func TestSortStableOnEqualDates(t *testing.T) {
	suppliers := []Supplier{{ID: "s1", Name: "Alfa"}}
	invoices := []Invoice{
		openInvoice("a", "s1", Date("2025-01-10"), 100),
		openInvoice("b", "s1", Date("2025-01-10"), 200),
		openInvoice("c", "s1", Date("2025-01-10"), 300),
	}
	enriched, _ := Enrich(invoices, suppliers)

	d := BuildDashboard(enriched, Filter{})
	got := []string{}
	for _, iws := range d.PayableServices {
		got = append(got, iws.Invoice.ID)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("equal dates must keep source order, got %v", got)
	}
}
