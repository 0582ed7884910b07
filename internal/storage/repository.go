package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fornitori/internal/core"
	"fornitori/internal/store"
)

// SQLiteRepository persists the ledger in a single SQLite file and
// implements store.Gateway. Invoices and their rows are written
// together in one transaction; rows are replaced wholesale on every
// save.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, iban, email, phone, notes, is_merchandise
		FROM suppliers
		ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []core.Supplier
	for rows.Next() {
		var s core.Supplier
		var merch int64
		if err := rows.Scan(&s.ID, &s.Name, &s.IBAN, &s.Email, &s.Phone, &s.Notes, &merch); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		s.IsMerchandise = merch != 0
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suppliers: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertSupplier(ctx context.Context, s core.Supplier) (core.Supplier, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	merch := int64(0)
	if s.IsMerchandise {
		merch = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, iban, email, phone, notes, is_merchandise)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			iban = excluded.iban,
			email = excluded.email,
			phone = excluded.phone,
			notes = excluded.notes,
			is_merchandise = excluded.is_merchandise`,
		s.ID, s.Name, s.IBAN, s.Email, s.Phone, s.Notes, merch)
	if err != nil {
		return core.Supplier{}, fmt.Errorf("upsert supplier: %w", err)
	}

	slog.DebugContext(ctx, "Supplier saved", "id", s.ID, "name", s.Name)
	return s, nil
}

// DeleteSupplier removes the supplier and every invoice referencing it.
// The cascade is explicit: the schema declares no foreign keys, since
// restored backups may legitimately hold invoices without a supplier.
func (r *SQLiteRepository) DeleteSupplier(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete supplier: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM invoice_rows
		WHERE invoice_id IN (SELECT id FROM invoices WHERE supplier_id = ?)`, id); err != nil {
		return fmt.Errorf("delete supplier rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE supplier_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplier invoices: %w", err)
	}
	cascaded, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete supplier result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete supplier %s: %w", id, store.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete supplier: %w", err)
	}

	slog.InfoContext(ctx, "Supplier deleted", "id", id, "cascaded_invoices", cascaded)
	return nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	invRows, err := r.db.QueryContext(ctx, `SELECT id, supplier_id, creation_date FROM invoices`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer invRows.Close()

	var invoices []core.Invoice
	index := make(map[string]int)
	for invRows.Next() {
		var inv core.Invoice
		var created string
		if err := invRows.Scan(&inv.ID, &inv.SupplierID, &created); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.CreationDate = parseCreationDate(created)
		index[inv.ID] = len(invoices)
		invoices = append(invoices, inv)
	}
	if err := invRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	rowRows, err := r.db.QueryContext(ctx, `
		SELECT invoice_id, row_id, row_date, description, protocol, credit_cents, debit_cents
		FROM invoice_rows
		ORDER BY invoice_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list invoice rows: %w", err)
	}
	defer rowRows.Close()

	for rowRows.Next() {
		var invoiceID, date string
		var row core.InvoiceRow
		if err := rowRows.Scan(&invoiceID, &row.ID, &date, &row.Description, &row.Protocol, &row.Credit.Cents, &row.Debit.Cents); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		row.Date = core.Date(date)
		if i, ok := index[invoiceID]; ok {
			invoices[i].Rows = append(invoices[i].Rows, row)
		}
	}
	if err := rowRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice rows: %w", err)
	}
	return invoices, nil
}

func (r *SQLiteRepository) UpsertInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("begin upsert invoice: %w", err)
	}
	defer tx.Rollback()

	// The creation date is set at first save; on updates the stored one
	// wins no matter what the caller sends.
	var stored string
	err = tx.QueryRowContext(ctx, `SELECT creation_date FROM invoices WHERE id = ?`, inv.ID).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		if inv.CreationDate.IsZero() {
			inv.CreationDate = time.Now().UTC()
		}
	case err != nil:
		return core.Invoice{}, fmt.Errorf("read invoice creation date: %w", err)
	default:
		inv.CreationDate = parseCreationDate(stored)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (id, supplier_id, creation_date)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			supplier_id = excluded.supplier_id,
			creation_date = excluded.creation_date`,
		inv.ID, inv.SupplierID, inv.CreationDate.UTC().Format(time.RFC3339Nano)); err != nil {
		return core.Invoice{}, fmt.Errorf("upsert invoice: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_rows WHERE invoice_id = ?`, inv.ID); err != nil {
		return core.Invoice{}, fmt.Errorf("clear invoice rows: %w", err)
	}
	for i, row := range inv.Rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_rows (invoice_id, position, row_id, row_date, description, protocol, credit_cents, debit_cents)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, i, row.ID, string(row.Date), row.Description, row.Protocol, row.Credit.Cents, row.Debit.Cents); err != nil {
			return core.Invoice{}, fmt.Errorf("insert invoice row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Invoice{}, fmt.Errorf("commit upsert invoice: %w", err)
	}

	slog.DebugContext(ctx, "Invoice saved", "id", inv.ID, "supplier_id", inv.SupplierID, "rows", len(inv.Rows))
	return inv, nil
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete invoice: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_rows WHERE invoice_id = ?`, id); err != nil {
		return fmt.Errorf("delete invoice rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invoice result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete invoice %s: %w", id, store.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete invoice: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wipe: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM invoice_rows`,
		`DELETE FROM invoices`,
		`DELETE FROM suppliers`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wipe: %w", err)
	}

	slog.WarnContext(ctx, "All ledger data deleted")
	return nil
}

// parseCreationDate tolerates the formats that have shown up in real
// databases; a value that parses as neither comes back zero rather than
// failing the whole listing.
func parseCreationDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
