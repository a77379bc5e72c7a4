package receipt

// render.go draws a composed Document with go-pdf/fpdf:
//   - centered organization title
//   - date / customer / challan number block
//   - bordered item table with a repeated header on continuation pages
//   - bold totals row
//   - thank-you note and render timestamp
//   - "Page i/n" on every page

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	coreFamily = "Helvetica"
	utf8Family = "ChallanUTF8"

	titleH  = 10.0
	metaH   = 8.0
	rowH    = 10.0
	footerH = 6.0
	// space kept free at the bottom of each page for the page number
	pageNoReserve = 8.0
	cellPadding   = 2.0
	ellipsis      = "..."
)

// Renderer turns challan records into PDF documents.
type Renderer struct {
	opts Options
}

// NewRenderer returns a Renderer with defaults applied to opts.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// CurrencySymbol is the symbol prefixed to every amount.
func (r *Renderer) CurrencySymbol() string { return r.opts.CurrencySymbol }

// Validate reports whether rec can be rendered.
func (r *Renderer) Validate(rec Record) error { return Validate(rec) }

// Compose validates rec and returns its layout without drawing it.
func (r *Renderer) Compose(rec Record) (*Document, error) {
	if err := Validate(rec); err != nil {
		return nil, err
	}
	return r.compose(rec, r.opts.Now()), nil
}

// Render validates, lays out and draws rec. It returns the complete PDF or
// an error, never a partial document.
func (r *Renderer) Render(rec Record) ([]byte, error) {
	doc, err := r.Compose(rec)
	if err != nil {
		return nil, err
	}
	return r.Draw(doc)
}

// Draw writes a composed Document to PDF bytes.
func (r *Renderer) Draw(doc *Document) ([]byte, error) {
	o := r.opts
	utf8 := len(o.UTF8Font) > 0

	text, err := r.encodeDocument(doc)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: o.PageWidth, Ht: o.PageHeight},
	})
	pdf.SetMargins(o.Margin, o.Margin, o.Margin)
	pdf.SetAutoPageBreak(false, o.Margin)
	pdf.SetCompression(!o.DisableCompression)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetTitle("Challan "+doc.ChallanNo, true)
	pdf.SetCreator(doc.Title, true)

	family := coreFamily
	if utf8 {
		family = utf8Family
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8FontFromBytes(family, style, o.UTF8Font)
		}
		if pdf.Err() {
			return nil, &RenderError{Op: "load font", Err: pdf.Error()}
		}
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-o.Margin)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*o.Margin
	bottom := pageH - o.Margin - pageNoReserve

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(contentW, titleH, fitText(pdf, text.Title, contentW, utf8), "", 1, "C", false, 0, "")

	pdf.SetFont(family, "", 12)
	for _, m := range text.Meta {
		pdf.CellFormat(contentW, metaH, fitText(pdf, m.Text, contentW, utf8), "", 1, m.Align, false, 0, "")
	}
	pdf.Ln(2)

	// ── Table ────────────────────────────────────────────────────────────────
	header := func() {
		pdf.SetFont(family, "B", 10)
		for i, col := range text.Columns {
			pdf.CellFormat(col.Width, rowH, fitText(pdf, col.Header, col.Width-cellPadding, utf8), "1", lineBreak(i, len(text.Columns)), "C", false, 0, "")
		}
	}
	row := func(cells []string) {
		for i, col := range text.Columns {
			pdf.CellFormat(col.Width, rowH, fitText(pdf, cells[i], col.Width-cellPadding, utf8), "1", lineBreak(i, len(text.Columns)), col.Align, false, 0, "")
		}
	}
	// ensureRoom starts a continuation page, with the table header, when the
	// next row would cross the bottom margin.
	ensureRoom := func() {
		if pdf.GetY()+rowH > bottom {
			pdf.AddPage()
			header()
		}
	}

	header()
	for _, cells := range text.Rows {
		ensureRoom()
		pdf.SetFont(family, "", 10)
		row(cells)
	}
	ensureRoom()
	pdf.SetFont(family, "B", 10)
	row(text.TotalsRow)

	// ── Footer ───────────────────────────────────────────────────────────────
	if pdf.GetY()+4+footerH*float64(len(text.Footer)) > bottom {
		pdf.AddPage()
	}
	pdf.Ln(4)
	pdf.SetFont(family, "I", 9)
	for _, line := range text.Footer {
		pdf.CellFormat(contentW, footerH, fitText(pdf, line, contentW, utf8), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Op: "output", Err: err}
	}
	return buf.Bytes(), nil
}

func lineBreak(i, n int) int {
	if i == n-1 {
		return 1
	}
	return 0
}

// encodeDocument returns a copy of doc whose strings are ready for the
// selected font. Core fonts take Windows-1252 bytes; anything outside that
// code page fails the whole render.
func (r *Renderer) encodeDocument(doc *Document) (*Document, error) {
	if len(r.opts.UTF8Font) > 0 {
		return doc, nil
	}
	enc := charmap.Windows1252.NewEncoder()
	conv := func(s string) (string, error) {
		out, err := enc.String(s)
		if err != nil {
			return "", &RenderError{Op: "encode", Err: fmt.Errorf("%q is not representable in Windows-1252: %w", s, err)}
		}
		return out, nil
	}

	out := *doc
	var err error
	if out.Title, err = conv(doc.Title); err != nil {
		return nil, err
	}
	out.Meta = make([]MetaLine, len(doc.Meta))
	for i, m := range doc.Meta {
		if out.Meta[i].Text, err = conv(m.Text); err != nil {
			return nil, err
		}
		out.Meta[i].Align = m.Align
	}
	out.Columns = make([]Column, len(doc.Columns))
	for i, c := range doc.Columns {
		out.Columns[i] = c
		if out.Columns[i].Header, err = conv(c.Header); err != nil {
			return nil, err
		}
	}
	convCells := func(cells []string) ([]string, error) {
		res := make([]string, len(cells))
		for i, c := range cells {
			if res[i], err = conv(c); err != nil {
				return nil, err
			}
		}
		return res, nil
	}
	out.Rows = make([][]string, len(doc.Rows))
	for i, cells := range doc.Rows {
		if out.Rows[i], err = convCells(cells); err != nil {
			return nil, err
		}
	}
	if out.TotalsRow, err = convCells(doc.TotalsRow); err != nil {
		return nil, err
	}
	if out.Footer, err = convCells(doc.Footer); err != nil {
		return nil, err
	}
	return &out, nil
}

// fitText truncates s with a trailing ellipsis so it fits width at the
// current font. Core-font strings are single-byte, UTF-8 strings are cut on
// rune boundaries.
func fitText(pdf *fpdf.Fpdf, s string, width float64, utf8 bool) string {
	if s == "" || pdf.GetStringWidth(s) <= width {
		return s
	}
	var units []string
	if utf8 {
		for _, r := range s {
			units = append(units, string(r))
		}
	} else {
		for i := 0; i < len(s); i++ {
			units = append(units, s[i:i+1])
		}
	}

	limit := width - pdf.GetStringWidth(ellipsis)
	var b strings.Builder
	w := 0.0
	for _, u := range units {
		uw := pdf.GetStringWidth(u)
		if w+uw > limit {
			break
		}
		b.WriteString(u)
		w += uw
	}
	return b.String() + ellipsis
}
