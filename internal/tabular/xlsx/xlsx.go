// Package xlsx reads statement exports from Excel workbooks.
package xlsx

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"reikningar/internal/core"
	"reikningar/internal/tabular"
)

// Source reads the first sheet (or Sheet, when set) of a workbook.
type Source struct {
	Name       string
	Data       []byte
	Sheet      string
	HeaderRow  int
	DateColumn string
}

var _ tabular.Source = (*Source)(nil)

// New returns a source over an in-memory workbook with the export's
// default layout.
func New(name string, data []byte) *Source {
	return &Source{
		Name:       name,
		Data:       data,
		HeaderRow:  tabular.DefaultHeaderRow,
		DateColumn: tabular.HeaderDate,
	}
}

// Read implements tabular.Source. Cell values are read raw so that amounts
// keep full precision and dates arrive as serials.
func (s *Source) Read(ctx context.Context) (*tabular.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(s.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", core.ErrMalformedInput, s.Name, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", core.ErrMalformedInput, s.Name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", core.ErrMalformedInput, sheet, err)
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}

	out, err := tabular.FromMatrix(s.Name, values, s.HeaderRow)
	if err != nil {
		return nil, err
	}
	if s.DateColumn != "" {
		out.ConvertSerialDates(s.DateColumn)
	}
	return out, nil
}
