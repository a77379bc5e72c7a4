// Package receipt lays out and renders the printable challan PDF.
//
// The renderer is a pure function of the Record it receives: it performs no
// I/O and keeps no state between calls, so one Renderer may be shared by
// every request goroutine.
package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one row of a challan. Description and Quantity are mandatory;
// a nil Price is rendered as zero.
type LineItem struct {
	Description *string
	Quantity    *decimal.Decimal
	Price       *decimal.Decimal
}

// Record is the input of a render.
type Record struct {
	CustomerName string
	ChallanNo    string
	// CreatedAt is the challan date. Zero means "render time".
	CreatedAt time.Time
	Items     []LineItem
}

// Totals are the aggregates persisted with a challan and printed in the totals row.
type Totals struct {
	Items decimal.Decimal
	Price decimal.Decimal
}

func (it LineItem) description() string {
	if it.Description == nil {
		return ""
	}
	return *it.Description
}

func (it LineItem) quantity() decimal.Decimal {
	if it.Quantity == nil {
		return decimal.Zero
	}
	return *it.Quantity
}

func (it LineItem) price() decimal.Decimal {
	if it.Price == nil {
		return decimal.Zero
	}
	return *it.Price
}

// LineTotal is quantity * price, exact.
func (it LineItem) LineTotal() decimal.Decimal {
	return it.quantity().Mul(it.price())
}

// ComputeTotals sums quantities and line totals. Record creation and the
// renderer both go through here so the stored aggregate and the printed one
// cannot drift apart.
func ComputeTotals(items []LineItem) Totals {
	t := Totals{Items: decimal.Zero, Price: decimal.Zero}
	for _, it := range items {
		t.Items = t.Items.Add(it.quantity())
		t.Price = t.Price.Add(it.LineTotal())
	}
	return t
}

// Validate checks everything the table output depends on. The first problem
// found is returned as a *ValidationError.
func Validate(rec Record) error {
	if strings.TrimSpace(rec.CustomerName) == "" {
		return fieldError("customerName", "is required")
	}
	if strings.TrimSpace(rec.ChallanNo) == "" {
		return fieldError("challanNo", "is required")
	}
	if len(rec.Items) == 0 {
		e := fieldError("items", "must be a non-empty list")
		e.Err = ErrEmptyItems
		return e
	}
	for i, it := range rec.Items {
		if it.Description == nil {
			return itemError(i, "description", "is required")
		}
		if it.Quantity == nil {
			return itemError(i, "quantity", "is required")
		}
		if it.Quantity.IsNegative() {
			return itemError(i, "quantity", "must not be negative")
		}
		if it.Price != nil && it.Price.IsNegative() {
			return itemError(i, "price", "must not be negative")
		}
	}
	return nil
}
