package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"reikningar/internal/core"
)

// Recurring split column names.
const (
	ColumnOneTime   = "One-time"
	ColumnRecurring = "Recurring"
)

// BillRecord is a bill reduced to what the time-series views need.
type BillRecord struct {
	Month     Month
	Creditor  string
	Amount    decimal.Decimal
	Recurring bool
}

// BillFrame is the analysable subset of a bill collection. Bills without a
// readable date or without an amount cannot be placed on the timeline and
// are counted in Skipped.
type BillFrame struct {
	Records []BillRecord
	Skipped int
}

// NewBillFrame builds a frame from bills, preserving their order.
func NewBillFrame(bills []core.Bill) BillFrame {
	var f BillFrame
	for _, b := range bills {
		if !b.HasDate() || !b.Amount.Valid {
			f.Skipped++
			continue
		}
		t, err := b.Time()
		if err != nil {
			f.Skipped++
			continue
		}
		f.Records = append(f.Records, BillRecord{
			Month:     MonthOf(t),
			Creditor:  b.Creditor,
			Amount:    b.Amount.Decimal,
			Recurring: b.Recurring,
		})
	}
	return f
}

// Empty reports whether the frame has no records.
func (f BillFrame) Empty() bool {
	return len(f.Records) == 0
}

func (f BillFrame) recurring() []BillRecord {
	var out []BillRecord
	for _, r := range f.Records {
		if r.Recurring {
			out = append(out, r)
		}
	}
	return out
}

// MonthlyTotals sums amounts per year-month.
func MonthlyTotals(f BillFrame) (Series, error) {
	if f.Empty() {
		return Series{}, core.ErrNoData
	}
	sums := make(map[string]decimal.Decimal)
	for _, r := range f.Records {
		k := r.Month.String()
		sums[k] = sums[k].Add(r.Amount)
	}
	return series(IndexYearMonth, sums), nil
}

// MonthlyByCreditor pivots amounts into one row per month and one column per
// creditor, with a trailing Total column. Absent cells are zero.
func MonthlyByCreditor(f BillFrame) (Table, error) {
	if f.Empty() {
		return Table{}, core.ErrNoData
	}
	p := newPivot()
	for _, r := range f.Records {
		p.add(r.Month.String(), r.Creditor, r.Amount)
	}
	return p.table(IndexYearMonth, nil, true), nil
}

// YearlyRecurring estimates yearly cost per creditor. A recurring bill
// counts twelve times its month's amount toward its year; a one-time bill
// counts once. Both contributions add up per (year, creditor).
func YearlyRecurring(f BillFrame) (Table, error) {
	if f.Empty() {
		return Table{}, core.ErrNoData
	}
	twelve := decimal.NewFromInt(12)

	// Recurring amounts are summed per (month, creditor) before scaling so a
	// month with two bills from one creditor annualises their sum.
	monthly := newPivot()
	for _, r := range f.recurring() {
		monthly.add(r.Month.String(), r.Creditor, r.Amount)
	}

	p := newPivot()
	for month, byCreditor := range monthly.cells {
		year := month[:4]
		for creditor, amt := range byCreditor {
			p.add(year, creditor, amt.Mul(twelve))
		}
	}
	for _, r := range f.Records {
		if !r.Recurring {
			p.add(r.Month.YearKey(), r.Creditor, r.Amount)
		}
	}
	return p.table(IndexYear, nil, true), nil
}

// MonthlyRecurringSplit sums one-time and recurring amounts per month.
func MonthlyRecurringSplit(f BillFrame) (Table, error) {
	if f.Empty() {
		return Table{}, core.ErrNoData
	}
	p := newPivot()
	for _, r := range f.Records {
		col := ColumnOneTime
		if r.Recurring {
			col = ColumnRecurring
		}
		p.add(r.Month.String(), col, r.Amount)
	}
	return p.table(IndexYearMonth, []string{ColumnOneTime, ColumnRecurring}, false), nil
}

// YearlyTotals sums amounts per year.
func YearlyTotals(f BillFrame) (Series, error) {
	if f.Empty() {
		return Series{}, core.ErrNoData
	}
	sums := make(map[string]decimal.Decimal)
	for _, r := range f.Records {
		k := r.Month.YearKey()
		sums[k] = sums[k].Add(r.Amount)
	}
	return series(IndexYear, sums), nil
}

// ProjectionMonths is the forward projection horizon.
const ProjectionMonths = 12

// ForwardProjection holds each recurring creditor's summed known amounts
// flat over the twelve months starting at the month of now. Bills need no
// date here; a null or zero amount is ignored. The table carries a Total
// column.
func ForwardProjection(bills []core.Bill, now time.Time) (Table, error) {
	sums := make(map[string]decimal.Decimal)
	for _, b := range bills {
		if !b.Recurring || !b.Amount.Valid || b.Amount.Decimal.IsZero() {
			continue
		}
		sums[b.Creditor] = sums[b.Creditor].Add(b.Amount.Decimal)
	}
	if len(sums) == 0 {
		return Table{}, core.ErrNoData
	}

	p := newPivot()
	start := MonthOf(now)
	for i := 0; i < ProjectionMonths; i++ {
		m := start.AddMonths(i).String()
		for c, amt := range sums {
			p.add(m, c, amt)
		}
	}
	return p.table(IndexYearMonth, nil, true), nil
}
