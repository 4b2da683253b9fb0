package analytics

import (
	"github.com/shopspring/decimal"

	"reikningar/internal/core"
)

// UncategorizedLabel groups costs without a category.
const UncategorizedLabel = "Uncategorized"

// StatementMonthlyTotals sums signed transaction amounts per year-month.
// Transactions whose date cannot be read are left out.
func StatementMonthlyTotals(txs []core.Transaction) (Series, error) {
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		d, err := t.Time()
		if err != nil {
			continue
		}
		k := MonthOf(d).String()
		sums[k] = sums[k].Add(t.Amount)
	}
	if len(sums) == 0 {
		return Series{}, core.ErrNoData
	}
	return series(IndexYearMonth, sums), nil
}

// SpendingByCreditor sums signed amounts per counterparty.
func SpendingByCreditor(txs []core.Transaction) (Series, error) {
	if len(txs) == 0 {
		return Series{}, core.ErrNoData
	}
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		sums[t.Creditor] = sums[t.Creditor].Add(t.Amount)
	}
	return series(IndexCreditor, sums), nil
}

// CostsByCategory sums the absolute value of costs (negative amounts) per
// category. Credits are ignored.
func CostsByCategory(txs []core.Transaction) (Series, error) {
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.IsCost() {
			continue
		}
		k := t.CategoryOr(UncategorizedLabel)
		sums[k] = sums[k].Add(t.Amount)
	}
	if len(sums) == 0 {
		return Series{}, core.ErrNoData
	}
	for k, v := range sums {
		sums[k] = v.Abs()
	}
	return series(IndexCategory, sums), nil
}
