// Package analytics derives time-indexed views from bills and
// transactions: monthly and yearly sums, recurring annualization, forward
// projection and the step-function backfill of recurring costs.
//
// Every function is pure over its input and reports core.ErrNoData instead
// of an empty result.
package analytics

import (
	"fmt"
	"time"

	"reikningar/internal/core"
)

// Month is a calendar year-month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth reads a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(core.MonthKeyLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, s)
	}
	return MonthOf(t), nil
}

// String renders the zero-padded YYYY-MM key; its lexical order is
// chronological.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Time is the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts m by n calendar months.
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// YearKey renders the year grouping key.
func (m Month) YearKey() string {
	return fmt.Sprintf("%04d", m.Year)
}

// monthRange lists every month from start to end inclusive.
func monthRange(start, end Month) []Month {
	var out []Month
	for cur := start; !cur.After(end); cur = cur.AddMonths(1) {
		out = append(out, cur)
	}
	return out
}
