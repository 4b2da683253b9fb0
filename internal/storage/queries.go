package storage

import (
	"context"
	"database/sql"
)

const insertBill = `-- name: InsertBill :execrows
INSERT INTO bills (id, creditor, date, amount, recurring)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`

type InsertBillParams struct {
	ID        string
	Creditor  string
	Date      sql.NullString
	Amount    sql.NullString
	Recurring int64
}

func (q *Queries) InsertBill(ctx context.Context, arg InsertBillParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertBill,
		arg.ID,
		arg.Creditor,
		arg.Date,
		arg.Amount,
		arg.Recurring,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBills = `-- name: ListBills :many
SELECT id, creditor, date, amount, recurring, created_at
FROM bills
ORDER BY rowid
`

func (q *Queries) ListBills(ctx context.Context) ([]BillRow, error) {
	rows, err := q.db.QueryContext(ctx, listBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BillRow
	for rows.Next() {
		var i BillRow
		if err := rows.Scan(
			&i.ID,
			&i.Creditor,
			&i.Date,
			&i.Amount,
			&i.Recurring,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBill = `-- name: GetBill :one
SELECT id, creditor, date, amount, recurring, created_at
FROM bills
WHERE id = ?
`

func (q *Queries) GetBill(ctx context.Context, id string) (BillRow, error) {
	row := q.db.QueryRowContext(ctx, getBill, id)
	var i BillRow
	err := row.Scan(
		&i.ID,
		&i.Creditor,
		&i.Date,
		&i.Amount,
		&i.Recurring,
		&i.CreatedAt,
	)
	return i, err
}

const updateBillRecurring = `-- name: UpdateBillRecurring :execrows
UPDATE bills SET recurring = ? WHERE id = ?
`

func (q *Queries) UpdateBillRecurring(ctx context.Context, recurring int64, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBillRecurring, recurring, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBill = `-- name: DeleteBill :execrows
DELETE FROM bills WHERE id = ?
`

func (q *Queries) DeleteBill(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBill, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertTransaction = `-- name: InsertTransaction :execrows
INSERT INTO transactions (hash, trans_date, creditor, amount, balance, category)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO NOTHING
`

type InsertTransactionParams struct {
	Hash      string
	TransDate string
	Creditor  string
	Amount    string
	Balance   sql.NullString
	Category  sql.NullString
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertTransaction,
		arg.Hash,
		arg.TransDate,
		arg.Creditor,
		arg.Amount,
		arg.Balance,
		arg.Category,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactions = `-- name: ListTransactions :many
SELECT hash, trans_date, creditor, amount, balance, category, created_at
FROM transactions
ORDER BY rowid
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.Hash,
			&i.TransDate,
			&i.Creditor,
			&i.Amount,
			&i.Balance,
			&i.Category,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
