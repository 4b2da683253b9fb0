// Package assistant grounds a language-model completion service in the
// stored bills and transactions and keeps a bounded conversation history.
package assistant

import (
	"fmt"
	"strings"

	"reikningar/internal/core"
)

// DefaultMaxRecords bounds how many bills and how many transactions are
// rendered into the context block.
const DefaultMaxRecords = 500

const unknownValue = "unknown"

// BuildContext renders bills and transactions as a plain-text block that is
// injected after the system prompt. Amounts are truncated to whole kronur.
// Each section lists at most maxRecords entries followed by a count of the
// omitted ones; maxRecords <= 0 means no bound.
func BuildContext(bills []core.Bill, txs []core.Transaction, maxRecords int) string {
	lines := []string{"Financial Data Summary:"}

	if len(bills) == 0 {
		lines = append(lines, "No bills available.")
	} else {
		lines = append(lines, "Bills:")
		shown := bound(len(bills), maxRecords)
		for _, b := range bills[:shown] {
			lines = append(lines, fmt.Sprintf("- %s: %s kr on %s", b.Creditor, billAmount(b), billDate(b)))
		}
		lines = appendOmitted(lines, len(bills)-shown)
	}

	if len(txs) == 0 {
		lines = append(lines, "No transactions available.")
	} else {
		lines = append(lines, "\nTransactions:")
		shown := bound(len(txs), maxRecords)
		for _, t := range txs[:shown] {
			lines = append(lines, fmt.Sprintf("- %s: %s kr on %s", t.Creditor, core.FormatKronur(t.Amount), t.TransDate))
		}
		lines = appendOmitted(lines, len(txs)-shown)
	}

	return strings.Join(lines, "\n")
}

func bound(n, max int) int {
	if max <= 0 || n <= max {
		return n
	}
	return max
}

func appendOmitted(lines []string, omitted int) []string {
	if omitted > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more", omitted))
	}
	return lines
}

func billAmount(b core.Bill) string {
	if !b.Amount.Valid {
		return unknownValue
	}
	return core.FormatKronur(b.Amount.Decimal)
}

func billDate(b core.Bill) string {
	if !b.HasDate() {
		return unknownValue
	}
	return b.Date
}
