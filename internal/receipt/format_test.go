package receipt

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		symbol string
		amount string
		want   string
	}{
		{"Rs", "30", "Rs 30.00"},
		{"Rs", "2.5", "Rs 2.50"},
		{"Rs", "0", "Rs 0.00"},
		// half rounds away from zero
		{"Rs", "0.005", "Rs 0.01"},
		{"Rs", "0.015", "Rs 0.02"},
		{"Rs", "0.004", "Rs 0.00"},
		{"₹", "1234.5", "₹ 1234.50"},
		{"", "7", "7.00"},
	}
	for _, c := range cases {
		got := FormatCurrency(c.symbol, decimal.RequireFromString(c.amount))
		assert.Equal(t, c.want, got, "amount %s", c.amount)
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "10", FormatQuantity(decimal.RequireFromString("10")))
	assert.Equal(t, "10", FormatQuantity(decimal.RequireFromString("10.00")))
	assert.Equal(t, "2.5", FormatQuantity(decimal.RequireFromString("2.50")))
	assert.Equal(t, "0", FormatQuantity(decimal.Zero))
	assert.Equal(t, "0.0004", FormatQuantity(decimal.RequireFromString("0.0004")))
	assert.Equal(t, "1"+strings.Repeat("0", 30), FormatQuantity(decimal.RequireFromString("1e30")))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "challan_C-001.pdf", Filename("C-001"))
	assert.Equal(t, "challan_a_b_c.pdf", Filename("a/b c"))
}
