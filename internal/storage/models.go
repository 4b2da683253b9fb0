package storage

import (
	"database/sql"
)

type BillRow struct {
	ID        string
	Creditor  string
	Date      sql.NullString
	Amount    sql.NullString
	Recurring int64
	CreatedAt sql.NullTime
}

type TransactionRow struct {
	Hash      string
	TransDate string
	Creditor  string
	Amount    string
	Balance   sql.NullString
	Category  sql.NullString
	CreatedAt sql.NullTime
}
