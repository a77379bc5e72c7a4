package infra

import (
	"path/filepath"
	"testing"
	"time"

	"voicechallan/internal/config"
	"voicechallan/internal/receipt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChallanRenderer_Variants(t *testing.T) {
	r, err := NewChallanRenderer(&config.Config{CurrencySymbol: "Rs", TableVariant: TableItemFirst})
	require.NoError(t, err)
	assert.Equal(t, "Rs", r.CurrencySymbol())

	_, err = NewChallanRenderer(&config.Config{TableVariant: "sideways"})
	assert.ErrorContains(t, err, "unknown table variant")
}

func TestNewChallanRenderer_MissingFont(t *testing.T) {
	_, err := NewChallanRenderer(&config.Config{PDFFontPath: filepath.Join(t.TempDir(), "missing.ttf")})
	assert.ErrorContains(t, err, "read font")
}

func TestNewChallanRenderer_Timezone(t *testing.T) {
	r, err := NewChallanRenderer(&config.Config{Timezone: "Asia/Kolkata"})
	require.NoError(t, err)

	desc := "Bolt"
	qty := decimal.NewFromInt(1)
	// 19:30 UTC is already the next day in India
	doc, err := r.Compose(receipt.Record{
		CustomerName: "Acme Co",
		ChallanNo:    "C-001",
		CreatedAt:    time.Date(2024, 3, 9, 19, 30, 0, 0, time.UTC),
		Items:        []receipt.LineItem{{Description: &desc, Quantity: &qty}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Date: 10-03-2024", doc.Meta[0].Text)

	_, err = NewChallanRenderer(&config.Config{Timezone: "Mars/Olympus"})
	assert.ErrorContains(t, err, "load timezone")
}
