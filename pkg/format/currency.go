// Package format provides locale-aware formatting of currency amounts for
// messages and report output. The calculation core itself always works in raw
// float64 units; formatting is strictly a presentation concern.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands
// separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 {
		return printer.Sprintf("-$%.2f", -amount)
	}
	return printer.Sprintf("$%.2f", amount)
}

// NumericCurrency returns a currency string without a currency symbol but
// with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if amount < 0 {
		return printer.Sprintf("-%.2f", -amount)
	}
	return printer.Sprintf("%.2f", amount)
}

// Percent renders a ratio (e.g. 0.35) as a whole percentage string ("35%").
func Percent(ratio float64) string {
	return printer.Sprintf("%.0f%%", ratio*100)
}
