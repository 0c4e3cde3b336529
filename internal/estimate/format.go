package estimate

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney formats a dollar amount with thousands separators and cents,
// e.g. "$75,000.00" or "-$1,250.50".
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-" + printer.Sprintf("$%.2f", math.Abs(amount))
	}
	return printer.Sprintf("$%.2f", amount)
}

// FormatCompact formats a dollar amount in human-readable form.
func FormatCompact(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	// Thresholds sit where the smaller unit would round up to 1000.
	switch {
	case amount >= 999_950_000:
		return fmt.Sprintf("%s$%.1fB", sign, amount/1_000_000_000)
	case amount >= 999_500:
		return fmt.Sprintf("%s$%.1fM", sign, amount/1_000_000)
	case amount >= 999.5:
		return fmt.Sprintf("%s$%.0fK", sign, amount/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, amount)
	}
}
