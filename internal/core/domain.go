package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCreditor is used when no creditor could be found in a document.
const UnknownCreditor = "Unknown"

type (
	// Bill is a payable obligation extracted from a document or entered by
	// hand. Date and Amount may be null when extraction missed them; an
	// empty Date is the null value.
	Bill struct {
		ID        string
		Creditor  string
		Date      string // DD.MM.YYYY
		Amount    decimal.NullDecimal
		Recurring bool
	}

	// Transaction is one ledger line from a bank statement export.
	// Amount is signed: negative is a cost, positive a credit.
	Transaction struct {
		Hash      string
		TransDate string // YYYY-MM-DD for spreadsheet imports
		Creditor  string // counterparty / description text
		Amount    decimal.Decimal
		Balance   decimal.NullDecimal
		Category  *string
	}
)

// NewBill builds a bill and derives its identity.
func NewBill(creditor, date string, amount decimal.NullDecimal, recurring bool) Bill {
	return Bill{
		ID:        BillID(creditor, date),
		Creditor:  creditor,
		Date:      date,
		Amount:    amount,
		Recurring: recurring,
	}
}

// NewTransaction builds a transaction and derives its identity hash.
func NewTransaction(transDate, creditor string, amount decimal.Decimal, balance decimal.NullDecimal, category *string) Transaction {
	return Transaction{
		Hash:      TransactionHash(transDate, creditor, amount),
		TransDate: transDate,
		Creditor:  creditor,
		Amount:    amount,
		Balance:   balance,
		Category:  category,
	}
}

// BillID is the dedup key of a bill: a digest over (creditor, date) only.
// Amount and Recurring are deliberately excluded, so two bills from the same
// creditor on the same date are the same bill.
func BillID(creditor, date string) string {
	return digest(creditor, date)
}

// TransactionHash is the dedup key of a transaction: a digest over
// (trans_date, creditor, amount). Balance and Category are excluded so
// overlapping statement exports collapse to one record.
func TransactionHash(transDate, creditor string, amount decimal.Decimal) string {
	return digest(transDate, creditor, amount.String())
}

func digest(fields ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, "_")))
	return hex.EncodeToString(sum[:])
}

// HasDate reports whether the bill carries a date.
func (b Bill) HasDate() bool {
	return b.Date != ""
}

// Time parses the bill date.
func (b Bill) Time() (time.Time, error) {
	return ParseBillDate(b.Date)
}

// Validate checks a manually entered bill.
func (b Bill) Validate() error {
	if strings.TrimSpace(b.Creditor) == "" {
		return ErrEmptyCreditor
	}
	if _, err := ParseBillDate(b.Date); err != nil {
		return err
	}
	if !b.Amount.Valid || b.Amount.Decimal.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// WithRecurring returns a copy with the recurring flag set. Identity is unchanged.
func (b Bill) WithRecurring(recurring bool) Bill {
	b.Recurring = recurring
	return b
}

// Time parses the transaction date.
func (t Transaction) Time() (time.Time, error) {
	return ParseTransactionDate(t.TransDate)
}

// IsCost reports whether the transaction moved money out of the account.
func (t Transaction) IsCost() bool {
	return t.Amount.IsNegative()
}

// CategoryOr returns the category or fallback when it is null.
func (t Transaction) CategoryOr(fallback string) string {
	if t.Category == nil || strings.TrimSpace(*t.Category) == "" {
		return fallback
	}
	return *t.Category
}

// Validate checks a transaction built outside the statement importer.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Creditor) == "" {
		return ErrEmptyCreditor
	}
	if _, err := t.Time(); err != nil {
		return err
	}
	return nil
}
