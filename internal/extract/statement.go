package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"reikningar/internal/core"
)

// StatementRow is one row of a bank statement export. Cells keep the type
// the source produced: time.Time for native dates, float64 or int for
// numbers, string for text, nil for blanks.
type StatementRow struct {
	Date        any
	Description any
	Amount      any
	Balance     any
	Category    any
}

// TransactionFromRow canonicalises one statement row. Native dates are
// rendered as YYYY-MM-DD; string dates pass through unchanged. A row without
// a date or a numeric amount is malformed.
func TransactionFromRow(row StatementRow) (core.Transaction, error) {
	date, err := dateCell(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	amount, ok, err := decimalCell(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: amount: %v", core.ErrMalformedInput, err)
	}
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: missing amount", core.ErrMalformedInput)
	}

	balance, ok, err := decimalCell(row.Balance)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: balance: %v", core.ErrMalformedInput, err)
	}
	var bal decimal.NullDecimal
	if ok {
		bal = decimal.NewNullDecimal(balance)
	}

	var category *string
	if s, ok := textCell(row.Category); ok {
		category = &s
	}

	creditor, _ := textCell(row.Description)
	return core.NewTransaction(date, creditor, amount, bal, category), nil
}

func dateCell(v any) (string, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return "", fmt.Errorf("%w: missing date", core.ErrMalformedInput)
		}
		return core.FormatISODate(d), nil
	case *time.Time:
		if d == nil {
			return "", fmt.Errorf("%w: missing date", core.ErrMalformedInput)
		}
		return core.FormatISODate(*d), nil
	case string:
		if strings.TrimSpace(d) == "" {
			return "", fmt.Errorf("%w: missing date", core.ErrMalformedInput)
		}
		return d, nil
	case nil:
		return "", fmt.Errorf("%w: missing date", core.ErrMalformedInput)
	default:
		return "", fmt.Errorf("%w: unsupported date cell %T", core.ErrMalformedInput, v)
	}
}

// decimalCell reports ok=false for blank cells.
func decimalCell(v any) (decimal.Decimal, bool, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false, nil
	case decimal.Decimal:
		return n, true, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false, nil
		}
		return decimal.NewFromFloat(n), true, nil
	case float32:
		return decimal.NewFromFloat32(n), true, nil
	case int:
		return decimal.NewFromInt(int64(n)), true, nil
	case int64:
		return decimal.NewFromInt(n), true, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return decimal.Zero, false, nil
		}
		d, err := core.ParseAmount(n)
		if err != nil {
			return decimal.Zero, false, err
		}
		return d, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("unsupported numeric cell %T", v)
	}
}

func textCell(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	default:
		return fmt.Sprint(v), true
	}
}
