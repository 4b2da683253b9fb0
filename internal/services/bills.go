package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"reikningar/internal/core"
	"reikningar/internal/log"
)

// ManualBill is user-entered bill data. Date may be DD.MM.YYYY, YYYY-MM-DD
// or an Icelandic long date.
type ManualBill struct {
	Creditor  string `json:"creditor"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Recurring bool   `json:"recurring"`
}

// AddManualBill validates and stores a bill entered by hand.
func (s *IngestService) AddManualBill(ctx context.Context, in ManualBill) (core.Bill, bool, error) {
	date, err := manualDate(in.Date)
	if err != nil {
		return core.Bill{}, false, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Bill{}, false, fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}

	bill := core.NewBill(strings.TrimSpace(in.Creditor), date, decimal.NewNullDecimal(amount), in.Recurring)
	if err := bill.Validate(); err != nil {
		return core.Bill{}, false, fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}

	inserted, err := s.state.Gateway().UpsertBill(ctx, bill)
	if err != nil {
		return core.Bill{}, false, fmt.Errorf("store manual bill: %w", err)
	}
	s.events.LogBillStored(ctx, "manual", bill.ID, bill.Creditor, bill.Date, amount.String(), inserted)
	return bill, inserted, s.state.Refresh(ctx)
}

// SetRecurring flips the recurring flag of a stored bill.
func (s *IngestService) SetRecurring(ctx context.Context, id string, recurring bool) error {
	if err := s.state.Gateway().UpdateBillRecurring(ctx, id, recurring); err != nil {
		return fmt.Errorf("update bill %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Bill recurring flag updated",
		log.FieldBillID, id,
		log.FieldOperation, log.OpUpdate,
		"recurring", recurring,
	)
	return s.state.Refresh(ctx)
}

// DeleteBill removes a stored bill.
func (s *IngestService) DeleteBill(ctx context.Context, id string) error {
	if err := s.state.Gateway().DeleteBill(ctx, id); err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Bill deleted", log.FieldBillID, id, log.FieldOperation, log.OpDelete)
	return s.state.Refresh(ctx)
}

func manualDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if d, ok := core.NormalizeBillDate(s); ok {
		return d, nil
	}
	t, err := core.ParseTransactionDate(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}
	return t.Format(core.BillDateLayout), nil
}

// Bill sort keys.
const (
	SortByDate     = "date"
	SortByCreditor = "creditor"
	SortByAmount   = "amount"
)

// BillQuery filters and orders a bill list. Zero values select everything
// in stored order.
type BillQuery struct {
	Creditor  string
	Recurring *bool
	SortBy    string
	Desc      bool
}

// Apply returns the matching bills in a new slice. Creditor matches as a
// case-insensitive substring. Undated bills sort before dated ones.
func (q BillQuery) Apply(bills []core.Bill) ([]core.Bill, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Creditor))
	out := make([]core.Bill, 0, len(bills))
	for _, b := range bills {
		if needle != "" && !strings.Contains(strings.ToLower(b.Creditor), needle) {
			continue
		}
		if q.Recurring != nil && b.Recurring != *q.Recurring {
			continue
		}
		out = append(out, b)
	}

	var less func(a, b core.Bill) bool
	switch q.SortBy {
	case "":
		return out, nil
	case SortByDate:
		less = func(a, b core.Bill) bool { return billSortTime(a) < billSortTime(b) }
	case SortByCreditor:
		less = func(a, b core.Bill) bool { return strings.ToLower(a.Creditor) < strings.ToLower(b.Creditor) }
	case SortByAmount:
		less = func(a, b core.Bill) bool { return a.Amount.Decimal.LessThan(b.Amount.Decimal) }
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q", core.ErrMalformedInput, q.SortBy)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

// billSortTime is YYYYMMDD for dated bills and "" otherwise.
func billSortTime(b core.Bill) string {
	t, err := b.Time()
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

// ResolveBillID expands an id prefix to the full id of exactly one bill.
func ResolveBillID(bills []core.Bill, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", fmt.Errorf("%w: empty bill id", core.ErrMalformedInput)
	}
	var match string
	for _, b := range bills {
		if !strings.HasPrefix(b.ID, prefix) {
			continue
		}
		if b.ID == prefix {
			return b.ID, nil
		}
		if match != "" {
			return "", fmt.Errorf("%w: bill id prefix %q is ambiguous", core.ErrMalformedInput, prefix)
		}
		match = b.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: bill %s", core.ErrNotFound, prefix)
	}
	return match, nil
}
