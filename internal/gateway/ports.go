// Package gateway defines the persistence ports for bills and transactions.
package gateway

import (
	"context"

	"reikningar/internal/core"
)

// Ports for record storage. Upserts are insert-if-absent keyed on the
// record identity; inserted is false when the identity already exists and
// the stored record is left untouched.
type (
	BillStore interface {
		UpsertBill(ctx context.Context, b core.Bill) (inserted bool, err error)
		// ListBills returns bills in insertion order.
		ListBills(ctx context.Context) ([]core.Bill, error)
		GetBill(ctx context.Context, id string) (core.Bill, error)
		UpdateBillRecurring(ctx context.Context, id string, recurring bool) error
		DeleteBill(ctx context.Context, id string) error
	}

	TransactionStore interface {
		UpsertTransaction(ctx context.Context, t core.Transaction) (inserted bool, err error)
		// ListTransactions returns transactions in insertion order.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	Gateway interface {
		BillStore
		TransactionStore
		Close() error
	}
)
