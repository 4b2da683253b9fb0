package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"reikningar/internal/core"
)

// BackfillLookback is how far before the earliest recurring observation the
// backfill timeline starts.
const BackfillLookback = 12

// Observation is a creditor's summed recurring amount in one month.
type Observation struct {
	Month  Month
	Amount decimal.Decimal
}

// CreditorTimeline holds one creditor's observations in month order.
type CreditorTimeline struct {
	Creditor     string
	Observations []Observation
}

// CostAt returns the effective cost in month m: the latest observation at
// or before m, or the earliest observation when m precedes all of them.
func (c CreditorTimeline) CostAt(m Month) decimal.Decimal {
	if len(c.Observations) == 0 {
		return decimal.Zero
	}
	cost := c.Observations[0].Amount
	for _, o := range c.Observations {
		if o.Month.After(m) {
			break
		}
		cost = o.Amount
	}
	return cost
}

// Backfill is the reconstructed monthly cost of every recurring creditor.
type Backfill struct {
	Start     Month
	End       Month
	Timelines []CreditorTimeline
	Table     Table
}

// StepBackfill rebuilds a monthly cost history for recurring creditors from
// sparse bill observations. The shared timeline runs from twelve months
// before the earliest recurring bill to the latest one, across all
// creditors. Each creditor holds its earliest price backward and its last
// known price forward until superseded.
func StepBackfill(f BillFrame) (Backfill, error) {
	rec := f.recurring()
	if len(rec) == 0 {
		return Backfill{}, core.ErrNoData
	}

	byCreditor := make(map[string]map[Month]decimal.Decimal)
	earliest, latest := rec[0].Month, rec[0].Month
	for _, r := range rec {
		if r.Month.Before(earliest) {
			earliest = r.Month
		}
		if r.Month.After(latest) {
			latest = r.Month
		}
		obs, ok := byCreditor[r.Creditor]
		if !ok {
			obs = make(map[Month]decimal.Decimal)
			byCreditor[r.Creditor] = obs
		}
		obs[r.Month] = obs[r.Month].Add(r.Amount)
	}

	creditors := make([]string, 0, len(byCreditor))
	for c := range byCreditor {
		creditors = append(creditors, c)
	}
	sort.Strings(creditors)

	b := Backfill{
		Start:     earliest.AddMonths(-BackfillLookback),
		End:       latest,
		Timelines: make([]CreditorTimeline, 0, len(creditors)),
	}
	for _, c := range creditors {
		tl := CreditorTimeline{Creditor: c}
		for m, amt := range byCreditor[c] {
			tl.Observations = append(tl.Observations, Observation{Month: m, Amount: amt})
		}
		sort.Slice(tl.Observations, func(i, j int) bool {
			return tl.Observations[i].Month.Before(tl.Observations[j].Month)
		})
		b.Timelines = append(b.Timelines, tl)
	}

	p := newPivot()
	for _, m := range monthRange(b.Start, b.End) {
		key := m.String()
		p.ensureRow(key)
		for _, tl := range b.Timelines {
			p.add(key, tl.Creditor, tl.CostAt(m))
		}
	}
	b.Table = p.table(IndexYearMonth, creditors, true)
	return b, nil
}
