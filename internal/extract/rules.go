// Package extract turns document text and statement rows into records.
//
// Bill extraction is best-effort: a rule that does not match leaves the
// field null and extraction continues. Statement rows are structured input
// and a row that cannot be read is reported as core.ErrMalformedInput.
package extract

import (
	"regexp"
	"strings"

	"reikningar/internal/core"
)

// dateShape accepts "5. janúar 2024" and "05.01.2024". Only the twelve
// month names count, so a label followed by another word is not a match.
var dateShape = `(\d{1,2}\.\s?(?i:` + strings.Join(core.IcelandicMonths[:], "|") + `)\s?\d{4}|\d{2}\.\d{2}\.\d{4})`

// DateRule locates a due or issue date behind a label. The first capture
// group holds the date text.
type DateRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// AmountRule locates a document total. The first capture group holds the
// amount text; ThousandsSep is removed from it before parsing.
type AmountRule struct {
	Name         string
	Pattern      *regexp.Regexp
	ThousandsSep string
}

// NewDateRule builds a rule matching label, an optional colon and a date.
func NewDateRule(label string) DateRule {
	return DateRule{
		Name:    label,
		Pattern: regexp.MustCompile(regexp.QuoteMeta(label) + `\s*:?\s*` + dateShape),
	}
}

// DefaultDateRules are tried in order; the first match wins.
var DefaultDateRules = []DateRule{
	NewDateRule("Gjalddagi"),
	NewDateRule("Dagsetning"),
	NewDateRule("Due date"),
	NewDateRule("Date"),
}

// DefaultAmountRules are alternative phrasings of the same total, in
// priority order.
var DefaultAmountRules = []AmountRule{
	{
		// Orkuveitan, ON
		Name:         "samtals-kr",
		Pattern:      regexp.MustCompile(`Samtals[:\s]*(\d[\d., ]*?)\s*kr\.`),
		ThousandsSep: ".",
	},
	{
		// Hringdu
		Name:         "samtals-isk-vsk",
		Pattern:      regexp.MustCompile(`Samtals(?:[:\s]| ISK með VSK\s*)\s*(\d[\d., ]*)(?:\s*kr\.)?`),
		ThousandsSep: ".",
	},
	{
		Name:         "total",
		Pattern:      regexp.MustCompile(`(?i)\bTotal(?:\s+due)?\s*:?\s*(\d[\d, ]*(?:\.\d{1,2})?)\s*(?:kr\.?|ISK)`),
		ThousandsSep: ",",
	},
}

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

func (r DateRule) find(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (r AmountRule) find(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	raw := m[1]
	if r.ThousandsSep != "" {
		raw = strings.ReplaceAll(raw, r.ThousandsSep, "")
	}
	return strings.TrimRight(raw, " \t\r\n"), true
}
