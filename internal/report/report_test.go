package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"reikningar/internal/analytics"
	"reikningar/internal/core"
	"reikningar/internal/services"
)

func amt(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func snapshot() services.Snapshot {
	return services.Snapshot{
		Bills: []core.Bill{
			core.NewBill("A", "01.01.2024", amt(100), false),
			core.NewBill("B", "01.03.2024", amt(50), true),
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"table": FormatTable, "JSON": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	f := Frame{Title: "T", Columns: []string{"year_month", "amount"}, Rows: [][]string{{"2024-01", "100"}}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, f))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "T", lines[0])
	assert.Equal(t, "year_month  amount", lines[2])
	assert.Equal(t, "2024-01     100", lines[3])
}

func TestWriteJSONAndYAML(t *testing.T) {
	f := Frame{Title: "T", Columns: []string{"k", "v"}, Rows: [][]string{{"a", "1"}}}

	var jbuf bytes.Buffer
	require.NoError(t, Write(&jbuf, FormatJSON, f))
	var fromJSON Frame
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &fromJSON))
	assert.Equal(t, f, fromJSON)

	var ybuf bytes.Buffer
	require.NoError(t, Write(&ybuf, FormatYAML, f))
	var fromYAML Frame
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &fromYAML))
	assert.Equal(t, f, fromYAML)
	assert.Contains(t, ybuf.String(), "columns:")
}

func TestWriteNoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, NoData("Costs by category")))
	assert.Contains(t, buf.String(), "No data.")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, NoData("x")))
	assert.Contains(t, buf.String(), `"no_data": true`)
}

func TestFromTable(t *testing.T) {
	tbl, err := analytics.MonthlyByCreditor(analytics.NewBillFrame(snapshot().Bills))
	require.NoError(t, err)
	f := FromTable("t", tbl)
	assert.Equal(t, []string{analytics.IndexYearMonth, "A", "B", analytics.TotalColumn}, f.Columns)
	assert.Equal(t, []string{"2024-01", "100", "0", "100"}, f.Rows[0])
}

func TestFromBills(t *testing.T) {
	f := FromBills([]core.Bill{core.NewBill("Unknown", "", decimal.NullDecimal{}, false)})
	require.Len(t, f.Rows, 1)
	assert.Len(t, f.Rows[0][0], 12)
	assert.Equal(t, []string{"Unknown", "", "", "false"}, f.Rows[0][1:])
}

func TestBuildView(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range ViewNames() {
		t.Run(name, func(t *testing.T) {
			f, err := BuildView(name, snapshot(), now)
			require.NoError(t, err)
			assert.NotEmpty(t, f.Title)
		})
	}

	f, err := BuildView(ViewYearlyRecurring, snapshot(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "100", "600", "700"}, f.Rows[0])

	f, err = BuildView(ViewCostsByCategory, snapshot(), now)
	require.NoError(t, err)
	assert.True(t, f.NoData, "no transactions")

	_, err = BuildView("pie-chart", snapshot(), now)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
