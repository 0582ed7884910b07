package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fornitori/internal/backup"
	"fornitori/internal/core"
)

// SheetsTarget mirrors snapshots into a Google spreadsheet: one
// worksheet for suppliers, one with every invoice flattened to its
// ledger rows. Each write clears and rewrites both worksheets.
type SheetsTarget struct {
	svc            *gsheet.Service
	spreadsheetID  string
	suppliersSheet string
	invoicesSheet  string
}

var _ Target = (*SheetsTarget)(nil)

// NewSheetsFromEnv creates a spreadsheet target using environment
// variables and service-account credentials.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_SUPPLIERS_SHEET_NAME (default
// "Fornitori"), GOOGLE_INVOICES_SHEET_NAME (default "Fatture").
func NewSheetsFromEnv(ctx context.Context) (*SheetsTarget, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	suppliersSheet := strings.TrimSpace(os.Getenv("GOOGLE_SUPPLIERS_SHEET_NAME"))
	if suppliersSheet == "" {
		suppliersSheet = "Fornitori"
	}
	invoicesSheet := strings.TrimSpace(os.Getenv("GOOGLE_INVOICES_SHEET_NAME"))
	if invoicesSheet == "" {
		invoicesSheet = "Fatture"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsTarget{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		suppliersSheet: suppliersSheet,
		invoicesSheet:  invoicesSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

func (t *SheetsTarget) Name() string {
	return "sheets:" + t.spreadsheetID
}

func (t *SheetsTarget) Write(ctx context.Context, doc backup.Document) error {
	if t.svc == nil {
		return errors.New("sheets service not initialized")
	}

	if err := t.rewriteSheet(ctx, t.suppliersSheet, supplierValues(doc.Suppliers)); err != nil {
		return fmt.Errorf("mirror suppliers: %w", err)
	}
	if err := t.rewriteSheet(ctx, t.invoicesSheet, invoiceValues(doc)); err != nil {
		return fmt.Errorf("mirror invoices: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot mirrored to spreadsheet",
		"spreadsheet_id", t.spreadsheetID,
		"suppliers", len(doc.Suppliers),
		"invoices", len(doc.Invoices))
	return nil
}

func (t *SheetsTarget) rewriteSheet(ctx context.Context, sheetName string, values [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheetName)
	if _, err := t.svc.Spreadsheets.Values.Clear(t.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := t.svc.Spreadsheets.Values.Update(t.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", sheetName, err)
	}
	return nil
}

func supplierValues(suppliers []core.Supplier) [][]any {
	values := [][]any{
		{"ID", "Nome", "IBAN", "Email", "Telefono", "Note", "Merce"},
	}
	for _, s := range suppliers {
		merch := "no"
		if s.IsMerchandise {
			merch = "sì"
		}
		values = append(values, []any{s.ID, s.Name, s.IBAN, s.Email, s.Phone, s.Notes, merch})
	}
	return values
}

// invoiceValues flattens every invoice to its ledger rows, one
// spreadsheet row per InvoiceRow, with the running balance repeated per
// invoice. Amounts are written as euro decimals; USER_ENTERED makes the
// spreadsheet treat them as numbers.
func invoiceValues(doc backup.Document) [][]any {
	names := make(map[string]string, len(doc.Suppliers))
	for _, s := range doc.Suppliers {
		names[s.ID] = s.Name
	}

	values := [][]any{
		{"Fattura", "Fornitore", "ID fornitore", "Data", "Descrizione", "Protocollo", "Credito", "Debito", "Saldo"},
	}
	for _, inv := range doc.Invoices {
		balance := inv.Balance()
		for _, row := range inv.Rows {
			values = append(values, []any{
				inv.ID,
				names[inv.SupplierID],
				inv.SupplierID,
				row.Date.String(),
				row.Description,
				row.Protocol,
				euros(row.Credit),
				euros(row.Debit),
				euros(balance),
			})
		}
	}
	return values
}

func euros(m core.Money) float64 {
	return float64(m.Cents) / 100.0
}
