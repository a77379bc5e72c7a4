package receipt

import (
	"time"
)

// ColumnKey selects which value of a line item a table column prints.
type ColumnKey string

const (
	ColumnQuantity    ColumnKey = "quantity"
	ColumnDescription ColumnKey = "description"
	ColumnPrice       ColumnKey = "price"
	ColumnTotal       ColumnKey = "total"
)

// Column is one fixed-width table column. Width is in millimetres and is
// never derived from content; Align is an fpdf alignment ("L", "C", "R").
type Column struct {
	Key    ColumnKey
	Header string
	Width  float64
	Align  string
}

// DefaultColumns is the Quantity / Description / Price / Total table.
func DefaultColumns() []Column {
	return []Column{
		{Key: ColumnQuantity, Header: "Quantity", Width: 30, Align: "C"},
		{Key: ColumnDescription, Header: "Description", Width: 80, Align: "L"},
		{Key: ColumnPrice, Header: "Price", Width: 30, Align: "R"},
		{Key: ColumnTotal, Header: "Total", Width: 30, Align: "R"},
	}
}

// ItemColumns is the Item / Quantity / Price / Total variant.
func ItemColumns() []Column {
	return []Column{
		{Key: ColumnDescription, Header: "Item", Width: 80, Align: "L"},
		{Key: ColumnQuantity, Header: "Quantity", Width: 30, Align: "C"},
		{Key: ColumnPrice, Header: "Price", Width: 30, Align: "R"},
		{Key: ColumnTotal, Header: "Total", Width: 30, Align: "R"},
	}
}

const (
	defaultOrganization = "Shakti Trading Co."
	defaultCurrency     = "Rs"
	defaultThankYou     = "Thank you for your business!"
	defaultDateFormat   = "02-01-2006"
	totalLabel          = "Total"
)

// Options configure a Renderer. Zero values fall back to the defaults above
// and an A4 portrait page.
type Options struct {
	OrganizationName string
	CurrencySymbol   string
	ThankYouNote     string
	DateFormat       string
	Columns          []Column

	// Page geometry in millimetres.
	PageWidth  float64
	PageHeight float64
	Margin     float64

	// UTF8Font holds a TrueType font used instead of the Helvetica core
	// font. Needed for symbols outside Windows-1252 such as "₹".
	UTF8Font []byte

	DisableCompression bool

	// Now is the render clock; defaults to time.Now.
	Now func() time.Time
	// Location is the zone both printed dates are shown in. Defaults to
	// time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.OrganizationName == "" {
		o.OrganizationName = defaultOrganization
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = defaultCurrency
	}
	if o.ThankYouNote == "" {
		o.ThankYouNote = defaultThankYou
	}
	if o.DateFormat == "" {
		o.DateFormat = defaultDateFormat
	}
	if len(o.Columns) == 0 {
		o.Columns = DefaultColumns()
	}
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth, o.PageHeight = 210, 297
	}
	if o.Margin <= 0 {
		o.Margin = 10
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// MetaLine is a single aligned line of the metadata block.
type MetaLine struct {
	Text  string
	Align string
}

// Document is the composed layout of one challan, before any drawing.
// Rows and TotalsRow hold one formatted cell per entry in Columns.
type Document struct {
	ChallanNo   string
	Title       string
	Meta        []MetaLine
	Columns     []Column
	Rows        [][]string
	TotalsRow   []string
	Footer      []string
	Totals      Totals
	GeneratedAt time.Time
}

func (r *Renderer) compose(rec Record, now time.Time) *Document {
	o := r.opts
	date := rec.CreatedAt
	if date.IsZero() {
		date = now
	}
	date = date.In(o.Location)
	shownNow := now.In(o.Location)

	doc := &Document{
		ChallanNo: rec.ChallanNo,
		Title:     o.OrganizationName,
		Meta: []MetaLine{
			{Text: "Date: " + date.Format(o.DateFormat), Align: "R"},
			{Text: "Customer: " + rec.CustomerName, Align: "L"},
			{Text: "Challan No: " + rec.ChallanNo, Align: "L"},
		},
		Columns:     o.Columns,
		Rows:        make([][]string, 0, len(rec.Items)),
		Totals:      ComputeTotals(rec.Items),
		GeneratedAt: now,
	}

	for _, it := range rec.Items {
		row := make([]string, len(o.Columns))
		for i, col := range o.Columns {
			switch col.Key {
			case ColumnQuantity:
				row[i] = FormatQuantity(it.quantity())
			case ColumnDescription:
				row[i] = it.description()
			case ColumnPrice:
				row[i] = FormatCurrency(o.CurrencySymbol, it.price())
			case ColumnTotal:
				row[i] = FormatCurrency(o.CurrencySymbol, it.LineTotal())
			}
		}
		doc.Rows = append(doc.Rows, row)
	}

	doc.TotalsRow = make([]string, len(o.Columns))
	labelAt := -1
	for i, col := range o.Columns {
		switch col.Key {
		case ColumnQuantity:
			doc.TotalsRow[i] = FormatQuantity(doc.Totals.Items)
		case ColumnTotal:
			doc.TotalsRow[i] = FormatCurrency(o.CurrencySymbol, doc.Totals.Price)
		case ColumnDescription:
			labelAt = i
		}
	}
	if labelAt < 0 {
		for i := range doc.TotalsRow {
			if doc.TotalsRow[i] == "" {
				labelAt = i
				break
			}
		}
	}
	if labelAt >= 0 {
		doc.TotalsRow[labelAt] = totalLabel
	}

	doc.Footer = []string{
		o.ThankYouNote,
		"Generated on " + shownNow.Format(o.DateFormat+" 15:04"),
	}
	return doc
}
