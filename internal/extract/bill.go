package extract

import (
	"github.com/shopspring/decimal"

	"reikningar/internal/core"
)

// Extractor applies ordered date and amount rules to document text.
type Extractor struct {
	DateRules   []DateRule
	AmountRules []AmountRule
}

// NewExtractor returns an extractor with the default rule sets.
func NewExtractor() *Extractor {
	return &Extractor{
		DateRules:   DefaultDateRules,
		AmountRules: DefaultAmountRules,
	}
}

// Draft is the outcome of bill extraction with the rules that produced it.
// Rule names are empty when nothing matched.
type Draft struct {
	Creditor   string
	Date       string
	Amount     decimal.NullDecimal
	DateRule   string
	AmountRule string
	RawDate    string
	RawAmount  string
}

// Empty reports whether extraction found nothing at all.
func (d Draft) Empty() bool {
	return d.Creditor == core.UnknownCreditor && d.Date == "" && !d.Amount.Valid
}

// Bill converts the draft to a non-recurring bill.
func (d Draft) Bill() core.Bill {
	return core.NewBill(d.Creditor, d.Date, d.Amount, false)
}

// ExtractBill runs the rules over text. It never fails; missing fields are
// left null and the creditor falls back to core.UnknownCreditor.
func (e *Extractor) ExtractBill(text string) core.Bill {
	return e.ExtractBillDraft(text).Bill()
}

// ExtractBillDraft is ExtractBill with rule provenance.
func (e *Extractor) ExtractBillDraft(text string) Draft {
	d := Draft{Creditor: core.UnknownCreditor}

	// A matched label with an unreadable date leaves the date null; later
	// rules are not consulted.
	for _, rule := range e.DateRules {
		raw, ok := rule.find(text)
		if !ok {
			continue
		}
		d.DateRule = rule.Name
		d.RawDate = raw
		if date, ok := core.NormalizeBillDate(raw); ok {
			d.Date = date
		}
		break
	}

	for _, rule := range e.AmountRules {
		raw, ok := rule.find(text)
		if !ok {
			continue
		}
		d.AmountRule = rule.Name
		d.RawAmount = raw
		d.Amount = core.ParseBillAmount(raw)
		break
	}

	if email := emailPattern.FindString(text); email != "" {
		d.Creditor = email
	}
	return d
}
