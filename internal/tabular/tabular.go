// Package tabular reads bank statement exports laid out as a header row
// followed by data rows, whatever the container (xlsx file, Google sheet).
package tabular

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"reikningar/internal/core"
	"reikningar/internal/extract"
)

// Column headers of the bank export.
const (
	HeaderDate     = "Dags"
	HeaderText     = "Texti"
	HeaderAmount   = "Upphæð"
	HeaderBalance  = "Staða"
	HeaderCategory = "Textalykill"
)

// DefaultHeaderRow is the 0-based index of the header row; the export puts
// four lines of account information above it.
const DefaultHeaderRow = 4

// Row maps header name to cell value.
type Row map[string]any

// Sheet is a header plus its data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Source yields one statement sheet.
type Source interface {
	Read(ctx context.Context) (*Sheet, error)
}

// Columns names the statement fields in a sheet.
type Columns struct {
	Date        string
	Description string
	Amount      string
	Balance     string
	Category    string
}

// DefaultColumns matches the bank export.
func DefaultColumns() Columns {
	return Columns{
		Date:        HeaderDate,
		Description: HeaderText,
		Amount:      HeaderAmount,
		Balance:     HeaderBalance,
		Category:    HeaderCategory,
	}
}

func (c Columns) required() []string {
	return []string{c.Date, c.Description, c.Amount}
}

// HasColumn reports whether the sheet header contains name.
func (s *Sheet) HasColumn(name string) bool {
	for _, h := range s.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// FromMatrix builds a sheet from a cell matrix. Rows above headerRow are
// ignored and blank rows are skipped.
func FromMatrix(name string, values [][]any, headerRow int) (*Sheet, error) {
	if headerRow < 0 || headerRow >= len(values) {
		return nil, fmt.Errorf("%w: %s: header row %d not present (%d rows)", core.ErrMalformedInput, name, headerRow, len(values))
	}

	header := values[headerRow]
	s := &Sheet{Name: name, Headers: make([]string, len(header))}
	for i, h := range header {
		s.Headers[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	for _, raw := range values[headerRow+1:] {
		if blank(raw) {
			continue
		}
		row := make(Row, len(s.Headers))
		for i, h := range s.Headers {
			if h == "" {
				continue
			}
			if i < len(raw) {
				row[h] = emptyToNil(raw[i])
			} else {
				row[h] = nil
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// ConvertSerialDates turns spreadsheet date serials in column into
// time.Time. Text dates are left untouched.
func (s *Sheet) ConvertSerialDates(column string) {
	for _, row := range s.Rows {
		serial, ok := serialValue(row[column])
		if !ok {
			continue
		}
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			row[column] = t
		}
	}
}

// StatementRows maps the sheet onto statement rows. A sheet without the
// date, text or amount column is malformed.
func StatementRows(s *Sheet, cols Columns) ([]extract.StatementRow, error) {
	var missing []string
	for _, c := range cols.required() {
		if !s.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s", core.ErrMalformedInput, s.Name, strings.Join(missing, ", "))
	}

	out := make([]extract.StatementRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		out = append(out, extract.StatementRow{
			Date:        r[cols.Date],
			Description: r[cols.Description],
			Amount:      r[cols.Amount],
			Balance:     r[cols.Balance],
			Category:    r[cols.Category],
		})
	}
	return out, nil
}

func serialValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func emptyToNil(v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return v
}

func blank(raw []any) bool {
	for _, v := range raw {
		if emptyToNil(v) != nil {
			return false
		}
	}
	return true
}
