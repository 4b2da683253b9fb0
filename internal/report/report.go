// Package report renders engine output for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"reikningar/internal/analytics"
	"reikningar/internal/core"
	"reikningar/internal/services"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be one of %v", s, Formats())
	}
}

// Frame is a titled grid of display strings.
type Frame struct {
	Title   string     `json:"title,omitempty" yaml:"title,omitempty"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
	NoData  bool       `json:"no_data,omitempty" yaml:"no_data,omitempty"`
}

// NoData is the frame shown when a view has nothing to aggregate.
func NoData(title string) Frame {
	return Frame{Title: title, NoData: true}
}

// Write renders f to w.
func Write(w io.Writer, format Format, f Frame) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeTable(w, f)
	}
}

func writeTable(w io.Writer, f Frame) error {
	if f.Title != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", f.Title); err != nil {
			return err
		}
	}
	if f.NoData {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(f.Columns, "\t"))
	for _, row := range f.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// FromTable lays out an analytics table with its index as first column.
func FromTable(title string, t analytics.Table) Frame {
	f := Frame{Title: title, Columns: append([]string{t.Index}, t.Columns...)}
	for i, key := range t.Rows {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, key)
		for _, v := range t.Values[i] {
			row = append(row, v.String())
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}

// FromSeries lays out a keyed series as two columns.
func FromSeries(title, valueColumn string, s analytics.Series) Frame {
	f := Frame{Title: title, Columns: []string{s.Index, valueColumn}}
	for _, p := range s.Points {
		f.Rows = append(f.Rows, []string{p.Key, p.Value.String()})
	}
	return f
}

// FromBills lists bills; null fields show as empty cells.
func FromBills(bills []core.Bill) Frame {
	f := Frame{Columns: []string{"id", "creditor", "date", "amount", "recurring"}}
	for _, b := range bills {
		amount := ""
		if b.Amount.Valid {
			amount = b.Amount.Decimal.String()
		}
		f.Rows = append(f.Rows, []string{shortID(b.ID), b.Creditor, b.Date, amount, strconv.FormatBool(b.Recurring)})
	}
	return f
}

// FromTransactions lists transactions.
func FromTransactions(txs []core.Transaction) Frame {
	f := Frame{Columns: []string{"date", "creditor", "amount", "balance", "category"}}
	for _, t := range txs {
		balance := ""
		if t.Balance.Valid {
			balance = t.Balance.Decimal.String()
		}
		f.Rows = append(f.Rows, []string{t.TransDate, t.Creditor, t.Amount.String(), balance, t.CategoryOr("")})
	}
	return f
}

// FromIngestResults summarises ingested documents.
func FromIngestResults(results []services.IngestResult) Frame {
	f := Frame{Columns: []string{"document", "kind", "inserted", "duplicates", "discarded", "rejected"}}
	for _, r := range results {
		f.Rows = append(f.Rows, []string{
			r.Document, r.Kind,
			strconv.Itoa(r.Inserted), strconv.Itoa(r.Duplicates),
			strconv.Itoa(r.Discarded), strconv.Itoa(r.Rejected),
		})
	}
	return f
}

// shortID truncates ids for display. Commands accept any unique prefix.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
