package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"reikningar/internal/analytics"
	"reikningar/internal/core"
	"reikningar/internal/services"
)

// View names.
const (
	ViewMonthlyTotals      = "monthly-totals"
	ViewMonthlyByCreditor  = "monthly-by-creditor"
	ViewYearlyRecurring    = "yearly-recurring"
	ViewRecurringSplit     = "recurring-split"
	ViewYearlyTotals       = "yearly-totals"
	ViewProjection         = "projection"
	ViewBackfill           = "backfill"
	ViewStatementMonthly   = "statement-monthly"
	ViewSpendingByCreditor = "spending-by-creditor"
	ViewCostsByCategory    = "costs-by-category"
)

type view struct {
	title string
	build func(snap services.Snapshot, now time.Time) (Frame, error)
}

var views = map[string]view{
	ViewMonthlyTotals: {"Monthly bill totals", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.MonthlyTotals(analytics.NewBillFrame(s.Bills))
		return FromSeries("", "amount", out), err
	}},
	ViewMonthlyByCreditor: {"Monthly bills by creditor", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.MonthlyByCreditor(analytics.NewBillFrame(s.Bills))
		return FromTable("", out), err
	}},
	ViewYearlyRecurring: {"Estimated yearly cost per creditor", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.YearlyRecurring(analytics.NewBillFrame(s.Bills))
		return FromTable("", out), err
	}},
	ViewRecurringSplit: {"Monthly one-time and recurring bills", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.MonthlyRecurringSplit(analytics.NewBillFrame(s.Bills))
		return FromTable("", out), err
	}},
	ViewYearlyTotals: {"Yearly bill totals", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.YearlyTotals(analytics.NewBillFrame(s.Bills))
		return FromSeries("", "amount", out), err
	}},
	ViewProjection: {"Recurring cost projection, next 12 months", func(s services.Snapshot, now time.Time) (Frame, error) {
		out, err := analytics.ForwardProjection(s.Bills, now)
		return FromTable("", out), err
	}},
	ViewBackfill: {"Reconstructed recurring cost history", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.StepBackfill(analytics.NewBillFrame(s.Bills))
		return FromTable("", out.Table), err
	}},
	ViewStatementMonthly: {"Monthly statement net", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.StatementMonthlyTotals(s.Transactions)
		return FromSeries("", "amount", out), err
	}},
	ViewSpendingByCreditor: {"Spending by counterparty", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.SpendingByCreditor(s.Transactions)
		return FromSeries("", "amount", out), err
	}},
	ViewCostsByCategory: {"Costs by category", func(s services.Snapshot, _ time.Time) (Frame, error) {
		out, err := analytics.CostsByCategory(s.Transactions)
		return FromSeries("", "amount", out), err
	}},
}

// ViewNames returns every view name in sorted order.
func ViewNames() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildView evaluates the named view over snap. An empty aggregation is not
// an error; it yields a frame with NoData set.
func BuildView(name string, snap services.Snapshot, now time.Time) (Frame, error) {
	v, ok := views[name]
	if !ok {
		return Frame{}, fmt.Errorf("%w: unknown view %q", core.ErrNotFound, name)
	}
	f, err := v.build(snap, now)
	if errors.Is(err, core.ErrNoData) {
		return NoData(v.title), nil
	}
	if err != nil {
		return Frame{}, fmt.Errorf("view %s: %w", name, err)
	}
	f.Title = v.title
	return f, nil
}
