package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TotalColumn is the synthetic per-row sum appended to pivot tables.
const TotalColumn = "Total"

// Index names.
const (
	IndexYearMonth = "year_month"
	IndexYear      = "year"
	IndexCreditor  = "creditor"
	IndexCategory  = "category"
)

// Table is a dense row-by-column grid of amounts. Missing cells are zero.
type Table struct {
	Index   string
	Rows    []string
	Columns []string
	Values  [][]decimal.Decimal
}

// Value returns the cell at (row, col).
func (t Table) Value(row, col string) (decimal.Decimal, bool) {
	r, c := indexOf(t.Rows, row), indexOf(t.Columns, col)
	if r < 0 || c < 0 {
		return decimal.Zero, false
	}
	return t.Values[r][c], true
}

// Column returns one column top to bottom, or nil when absent.
func (t Table) Column(col string) []decimal.Decimal {
	c := indexOf(t.Columns, col)
	if c < 0 {
		return nil
	}
	out := make([]decimal.Decimal, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Values[r][c]
	}
	return out
}

// Point is one keyed amount of a series.
type Point struct {
	Key   string
	Value decimal.Decimal
}

// Series is an ordered list of keyed amounts.
type Series struct {
	Index  string
	Points []Point
}

// Value returns the amount at key.
func (s Series) Value(key string) (decimal.Decimal, bool) {
	for _, p := range s.Points {
		if p.Key == key {
			return p.Value, true
		}
	}
	return decimal.Zero, false
}

// pivot accumulates sums keyed by (row, column).
type pivot struct {
	cells map[string]map[string]decimal.Decimal
	cols  map[string]struct{}
}

func newPivot() *pivot {
	return &pivot{
		cells: make(map[string]map[string]decimal.Decimal),
		cols:  make(map[string]struct{}),
	}
}

func (p *pivot) add(row, col string, v decimal.Decimal) {
	r, ok := p.cells[row]
	if !ok {
		r = make(map[string]decimal.Decimal)
		p.cells[row] = r
	}
	r[col] = r[col].Add(v)
	p.cols[col] = struct{}{}
}

func (p *pivot) empty() bool {
	return len(p.cells) == 0
}

// ensureRow registers a row that may have no cells.
func (p *pivot) ensureRow(row string) {
	if _, ok := p.cells[row]; !ok {
		p.cells[row] = make(map[string]decimal.Decimal)
	}
}

// table renders the pivot with rows sorted and columns either sorted or in
// the given order, zero-filling gaps and optionally appending TotalColumn.
func (p *pivot) table(index string, columns []string, withTotal bool) Table {
	rows := make([]string, 0, len(p.cells))
	for r := range p.cells {
		rows = append(rows, r)
	}
	sort.Strings(rows)

	if columns == nil {
		columns = make([]string, 0, len(p.cols))
		for c := range p.cols {
			columns = append(columns, c)
		}
		sort.Strings(columns)
	}

	out := Table{Index: index, Rows: rows, Columns: append([]string(nil), columns...)}
	if withTotal {
		out.Columns = append(out.Columns, TotalColumn)
	}
	out.Values = make([][]decimal.Decimal, len(rows))
	for i, r := range rows {
		vals := make([]decimal.Decimal, len(out.Columns))
		total := decimal.Zero
		for j, c := range columns {
			v := p.cells[r][c]
			vals[j] = v
			total = total.Add(v)
		}
		if withTotal {
			vals[len(vals)-1] = total
		}
		out.Values[i] = vals
	}
	return out
}

// series flattens a single-column accumulator in sorted key order.
func series(index string, sums map[string]decimal.Decimal) Series {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := Series{Index: index, Points: make([]Point, len(keys))}
	for i, k := range keys {
		s.Points[i] = Point{Key: k, Value: sums[k]}
	}
	return s
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
