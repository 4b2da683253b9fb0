// Package storage persists bills and transactions in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"reikningar/internal/core"
	"reikningar/internal/gateway"

	_ "modernc.org/sqlite"
)

var _ gateway.Gateway = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db            *sql.DB
	queries       *Queries
	schemaVersion uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", core.ErrExternalService, err)
	}

	version, err := Migrate(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:            db,
		queries:       New(db),
		schemaVersion: version,
	}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertBill implements gateway.BillStore
func (r *SQLiteRepository) UpsertBill(ctx context.Context, b core.Bill) (bool, error) {
	n, err := r.queries.InsertBill(ctx, InsertBillParams{
		ID:        b.ID,
		Creditor:  b.Creditor,
		Date:      nullString(b.Date),
		Amount:    nullDecimalString(b.Amount),
		Recurring: boolToInt(b.Recurring),
	})
	if err != nil {
		return false, fmt.Errorf("%w: insert bill: %v", core.ErrExternalService, err)
	}
	inserted := n > 0
	slog.DebugContext(ctx, "Bill upserted", "id", b.ID, "creditor", b.Creditor, "inserted", inserted)
	return inserted, nil
}

// ListBills implements gateway.BillStore
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.queries.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list bills: %v", core.ErrExternalService, err)
	}
	out := make([]core.Bill, 0, len(rows))
	for _, row := range rows {
		b, err := row.toBill()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// GetBill implements gateway.BillStore
func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	row, err := r.queries.GetBill(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("%w: get bill: %v", core.ErrExternalService, err)
	}
	return row.toBill()
}

// UpdateBillRecurring implements gateway.BillStore
func (r *SQLiteRepository) UpdateBillRecurring(ctx context.Context, id string, recurring bool) error {
	n, err := r.queries.UpdateBillRecurring(ctx, boolToInt(recurring), id)
	if err != nil {
		return fmt.Errorf("%w: update bill: %v", core.ErrExternalService, err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Bill recurring flag updated", "id", id, "recurring", recurring)
	return nil
}

// DeleteBill implements gateway.BillStore
func (r *SQLiteRepository) DeleteBill(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBill(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete bill: %v", core.ErrExternalService, err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Bill deleted", "id", id)
	return nil
}

// UpsertTransaction implements gateway.TransactionStore
func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	var category sql.NullString
	if t.Category != nil {
		category = sql.NullString{String: *t.Category, Valid: true}
	}
	n, err := r.queries.InsertTransaction(ctx, InsertTransactionParams{
		Hash:      t.Hash,
		TransDate: t.TransDate,
		Creditor:  t.Creditor,
		Amount:    t.Amount.String(),
		Balance:   nullDecimalString(t.Balance),
		Category:  category,
	})
	if err != nil {
		return false, fmt.Errorf("%w: insert transaction: %v", core.ErrExternalService, err)
	}
	return n > 0, nil
}

// ListTransactions implements gateway.TransactionStore
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", core.ErrExternalService, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTransaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (row BillRow) toBill() (core.Bill, error) {
	b := core.Bill{
		ID:        row.ID,
		Creditor:  row.Creditor,
		Date:      row.Date.String,
		Recurring: row.Recurring != 0,
	}
	if row.Amount.Valid {
		d, err := decimal.NewFromString(row.Amount.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("bill %s: stored amount %q: %w", row.ID, row.Amount.String, err)
		}
		b.Amount = decimal.NewNullDecimal(d)
	}
	return b, nil
}

func (row TransactionRow) toTransaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: stored amount %q: %w", row.Hash, row.Amount, err)
	}
	t := core.Transaction{
		Hash:      row.Hash,
		TransDate: row.TransDate,
		Creditor:  row.Creditor,
		Amount:    amount,
	}
	if row.Balance.Valid {
		bal, err := decimal.NewFromString(row.Balance.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("transaction %s: stored balance %q: %w", row.Hash, row.Balance.String, err)
		}
		t.Balance = decimal.NewNullDecimal(bal)
	}
	if row.Category.Valid {
		c := row.Category.String
		t.Category = &c
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimalString(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
