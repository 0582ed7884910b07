package backup

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"fornitori/internal/core"
	"fornitori/internal/store/memory"
)

func seed(t *testing.T, gw *memory.Store) ([]core.Supplier, []core.Invoice) {
	t.Helper()
	ctx := context.Background()

	s1, err := gw.UpsertSupplier(ctx, core.Supplier{Name: "Rossi SRL", IBAN: "IT60X054", IsMerchandise: true})
	if err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	s2, err := gw.UpsertSupplier(ctx, core.Supplier{Name: "Bianchi SNC", Email: "info@bianchi.it"})
	if err != nil {
		t.Fatalf("seed supplier: %v", err)
	}

	i1, err := gw.UpsertInvoice(ctx, core.Invoice{
		SupplierID: s1.ID,
		Rows: []core.InvoiceRow{
			{ID: "r1", Date: core.Date("2025-01-10"), Description: "fattura 3/B", Protocol: "3/B", Credit: core.Money{Cents: 122000}},
			{ID: "r2", Date: core.Date("2025-02-01"), Description: "acconto", Debit: core.Money{Cents: 50000}},
		},
	})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	i2, err := gw.UpsertInvoice(ctx, core.Invoice{
		SupplierID: s2.ID,
		Rows: []core.InvoiceRow{
			{ID: "r1", Date: core.Date("2024-12-20"), Credit: core.Money{Cents: 9900}},
			{ID: "r2", Date: core.Date("2025-01-05"), Debit: core.Money{Cents: 9900}},
		},
	})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return []core.Supplier{s1, s2}, []core.Invoice{i1, i2}
}

func TestExport(t *testing.T) {
	gw := memory.New()
	seed(t, gw)

	doc, err := Export(context.Background(), gw)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(doc.Suppliers) != 2 || len(doc.Invoices) != 2 {
		t.Fatalf("expected 2/2, got %d/%d", len(doc.Suppliers), len(doc.Invoices))
	}
	if doc.Version != FormatVersion {
		t.Fatalf("expected version %q, got %q", FormatVersion, doc.Version)
	}
	if doc.Timestamp.IsZero() {
		t.Fatalf("expected generation timestamp")
	}
}

func TestExportEmptyDatasetStaysValid(t *testing.T) {
	doc, err := Export(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Suppliers == nil || doc.Invoices == nil {
		t.Fatalf("empty export must carry empty sequences, not null")
	}

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(data); err != nil {
		t.Fatalf("own export failed structural validation: %v", err)
	}
}

// import(export()) must reproduce the identical dataset: same ids, same
// fields, same supplier references.
func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := memory.New()
	wantSuppliers, _ := seed(t, source)

	doc, err := Export(ctx, source)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	target := memory.New()
	if err := Import(ctx, target, decoded); err != nil {
		t.Fatalf("import: %v", err)
	}

	gotSuppliers, _ := target.ListSuppliers(ctx)
	srcSuppliers, _ := source.ListSuppliers(ctx)
	if !reflect.DeepEqual(gotSuppliers, srcSuppliers) {
		t.Fatalf("suppliers differ after round trip:\n  want %+v\n  got  %+v", srcSuppliers, gotSuppliers)
	}
	if len(gotSuppliers) != len(wantSuppliers) {
		t.Fatalf("expected %d suppliers, got %d", len(wantSuppliers), len(gotSuppliers))
	}

	srcInvoices, _ := source.ListInvoices(ctx)
	gotInvoices, _ := target.ListInvoices(ctx)
	if len(gotInvoices) != len(srcInvoices) {
		t.Fatalf("expected %d invoices, got %d", len(srcInvoices), len(gotInvoices))
	}
	byID := map[string]core.Invoice{}
	for _, inv := range gotInvoices {
		byID[inv.ID] = inv
	}
	for _, want := range srcInvoices {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("invoice %s lost in round trip", want.ID)
		}
		if got.SupplierID != want.SupplierID {
			t.Fatalf("invoice %s supplier reference changed: %s -> %s", want.ID, want.SupplierID, got.SupplierID)
		}
		if !got.CreationDate.Equal(want.CreationDate) {
			t.Fatalf("invoice %s creation date changed", want.ID)
		}
		if !reflect.DeepEqual(got.Rows, want.Rows) {
			t.Fatalf("invoice %s rows changed:\n  want %+v\n  got  %+v", want.ID, want.Rows, got.Rows)
		}
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	seed(t, gw)

	doc := Document{
		Suppliers: []core.Supplier{{ID: "A", Name: "Importato"}},
		Invoices: []core.Invoice{{
			ID:         "X",
			SupplierID: "A",
			Rows:       []core.InvoiceRow{{Date: core.Date("2024-06-01"), Credit: core.Money{Cents: 1500}}},
		}},
	}
	if err := Import(ctx, gw, doc); err != nil {
		t.Fatalf("import: %v", err)
	}

	suppliers, _ := gw.ListSuppliers(ctx)
	if len(suppliers) != 1 || suppliers[0].ID != "A" {
		t.Fatalf("expected only imported supplier A, got %+v", suppliers)
	}
	invoices, _ := gw.ListInvoices(ctx)
	if len(invoices) != 1 || invoices[0].ID != "X" || invoices[0].SupplierID != "A" {
		t.Fatalf("expected invoice X referencing A, got %+v", invoices)
	}
}

func TestImportRejectsInvalidDocumentBeforeMutation(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	seed(t, gw)

	bad := []Document{
		{Invoices: []core.Invoice{}},   // suppliers missing
		{Suppliers: []core.Supplier{}}, // invoices missing
		{},
	}
	for i, doc := range bad {
		if err := Import(ctx, gw, doc); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("case %d expected ErrInvalidDocument, got %v", i, err)
		}
	}

	// Nothing was wiped.
	suppliers, _ := gw.ListSuppliers(ctx)
	invoices, _ := gw.ListInvoices(ctx)
	if len(suppliers) != 2 || len(invoices) != 2 {
		t.Fatalf("invalid import touched the dataset: %d/%d", len(suppliers), len(invoices))
	}
}

var errWriteRefused = errors.New("write refused")

// failingGateway wipes fine but refuses the writes that follow,
// simulating a backend dying mid-restore.
type failingGateway struct {
	*memory.Store
}

func (g *failingGateway) UpsertSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	return core.Supplier{}, errWriteRefused
}

func TestImportFailureAfterWipeSurfacesError(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	seed(t, inner)

	doc := Document{
		Suppliers: []core.Supplier{{ID: "A", Name: "Importato"}},
		Invoices:  []core.Invoice{},
	}
	if err := Import(ctx, &failingGateway{Store: inner}, doc); !errors.Is(err, errWriteRefused) {
		t.Fatalf("expected the restore failure to surface, got %v", err)
	}

	// The wipe already ran: the old dataset is gone, and the error tells
	// the caller so. Recovery is importing again.
	suppliers, _ := inner.ListSuppliers(ctx)
	invoices, _ := inner.ListInvoices(ctx)
	if len(suppliers) != 0 || len(invoices) != 0 {
		t.Fatalf("expected wiped dataset after failed restore, got %d/%d", len(suppliers), len(invoices))
	}
}

func TestDecodeStructuralValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
		ok   bool
	}{
		{"complete", `{"suppliers":[],"invoices":[],"timestamp":"2025-01-01T00:00:00Z","version":"1"}`, true},
		{"no version still fine", `{"suppliers":[],"invoices":[]}`, true},
		{"suppliers missing", `{"invoices":[]}`, false},
		{"invoices missing", `{"suppliers":[]}`, false},
		{"suppliers null", `{"suppliers":null,"invoices":[]}`, false},
		{"suppliers not a sequence", `{"suppliers":{},"invoices":[]}`, false},
		{"not json", `ciao`, false},
		{"wrong top-level type", `[1,2,3]`, false},
	}
	for _, tc := range cases {
		_, err := Decode([]byte(tc.data))
		if tc.ok && err != nil {
			t.Fatalf("%s: expected ok, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", tc.name, err)
		}
	}
}

func TestDecodeTolerantAmounts(t *testing.T) {
	data := `{
		"suppliers": [{"id":"A","name":"Rossi"}],
		"invoices": [{
			"id":"X","supplier_id":"A",
			"rows":[{"date":"2025-01-10","credit":"12.34","debit":"garbage"}]
		}]
	}`
	doc, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	row := doc.Invoices[0].Rows[0]
	if row.Credit.Cents != 1234 {
		t.Fatalf("quoted amount expected 1234, got %d", row.Credit.Cents)
	}
	if row.Debit.Cents != 0 {
		t.Fatalf("garbage amount must coerce to 0, got %d", row.Debit.Cents)
	}
}
