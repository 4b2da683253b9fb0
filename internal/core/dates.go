package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// BillDateLayout is the canonical rendering of Bill.Date (DD.MM.YYYY).
	BillDateLayout = "02.01.2006"
	// ISODateLayout is the canonical rendering of spreadsheet transaction dates.
	ISODateLayout = "2006-01-02"
	// MonthKeyLayout renders the year-month grouping key.
	MonthKeyLayout = "2006-01"
)

// IcelandicMonths maps month index (January = 0) to the month name used on
// the source documents.
var IcelandicMonths = [12]string{
	"janúar", "febrúar", "mars", "apríl", "maí", "júní",
	"júlí", "ágúst", "september", "október", "nóvember", "desember",
}

var namedDatePattern = regexp.MustCompile(`^(\d{1,2})\.\s*(\p{L}+)\s*(\d{4})$`)

// MonthNumber returns the 1-based month for an Icelandic month name.
func MonthNumber(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, m := range IcelandicMonths {
		if m == name {
			return i + 1, true
		}
	}
	return 0, false
}

// NormalizeBillDate renders a "D. MonthName YYYY" or "DD.MM.YYYY" date as
// DD.MM.YYYY. It reports false for anything it cannot read, including
// unknown month names and days that do not exist in the month.
func NormalizeBillDate(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if m := namedDatePattern.FindStringSubmatch(s); m != nil {
		month, ok := MonthNumber(m[2])
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			return "", false
		}
		return t.Format(BillDateLayout), true
	}

	t, err := time.Parse(BillDateLayout, s)
	if err != nil {
		return "", false
	}
	return t.Format(BillDateLayout), true
}

// ParseBillDate parses a normalised bill date.
func ParseBillDate(s string) (time.Time, error) {
	t, err := time.Parse(BillDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// transactionDateLayouts are tried in order; statement exports carry ISO
// dates but string cells may keep the bill layout.
var transactionDateLayouts = []string{
	ISODateLayout,
	BillDateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseTransactionDate parses Transaction.TransDate.
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatISODate renders t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// MonthKey renders the YYYY-MM grouping key of t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}
