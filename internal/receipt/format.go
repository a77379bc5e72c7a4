package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency prints amount with exactly two decimals behind symbol.
// Halves round away from zero: 0.005 prints as "0.01".
func FormatCurrency(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		return amount.StringFixed(2)
	}
	return symbol + " " + amount.StringFixed(2)
}

// FormatQuantity prints the shortest exact plain-decimal form of q: "10",
// "2.5". There is no exponent notation, so 1e30 prints all 31 digits; the
// table cell truncates what does not fit.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// Filename is the suggested download name for a challan PDF.
func Filename(challanNo string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, challanNo)
	return "challan_" + safe + ".pdf"
}
