// =============================================================================
// NFC-e to PDF Converter - Layout Engine
// =============================================================================
//
// The layout engine turns an nfce.Document into an ordered list of draw
// operations on one or more fixed-size pages. It never touches a PDF library:
// text is measured through the Measurer interface and the result is a plain
// Document value that a canvas replays.
//
// VISUAL ORDER:
//   1. Title
//   2. Issuer block (name, address, CNPJ/IE)
//   3. Access key and issue date
//   4. Recipient
//   5. Item table (header + rows)
//   6. Totals
//   7. Payments and change due
//   8. QR code and footer
//
// COORDINATES:
//   Millimetres, origin at the top-left corner, y growing downward. Text
//   operations carry the left x and the baseline y of the run.
//
// PAGINATION:
//   Content is assembled in blocks of known height that are placed whole.
//   An item row goes to a new page when the space left under it would fall
//   below Geometry.Safety; the new page starts with the continuation title and
//   the repeated column header. Trailing blocks move to a new page (title
//   only) when they would cross the bottom margin.
//
// =============================================================================

package layout

import (
	"math"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfce"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/numfmt"
)

// =============================================================================
// PRINTED TEXTS
// =============================================================================

const (
	TitleText             = "DANFE NFC-e - Documento Auxiliar da Nota Fiscal de Consumidor Eletrônica"
	ContinuationTitleText = "DANFE NFC-e (continuação)"
	QRInstructionText     = "Consulta via leitor de QR Code"
	QRPortalText          = "Ou acesse o portal da SEFAZ e informe a chave:"
	QRMissingText         = "QR Code não informado no XML."
	FooterText            = "DANFE NFC-e - Não é documento fiscal. Válido como representação simplificada da NFC-e."
)

// =============================================================================
// DRAW OPERATIONS
// =============================================================================

// OpKind identifies a draw operation.
type OpKind int

const (
	OpText OpKind = iota
	OpLine
	OpQRCode
)

// Op is one draw operation.
//
//   - OpText:   Text at (X, Y) with Font; Y is the baseline.
//   - OpLine:   segment from (X, Y) to (X2, Y2); LineWidth is in points.
//   - OpQRCode: square of side Size with its top-left corner at (X, Y),
//     encoding Text.
type Op struct {
	Kind      OpKind
	X, Y      float64
	X2, Y2    float64
	Size      float64
	LineWidth float64
	Text      string
	Font      Font
}

// Page holds the operations of one page in drawing order.
type Page struct {
	Number int
	Ops    []Op
}

// Document is the laid out result for one invoice.
type Document struct {
	Geometry Geometry
	Title    string
	Pages    []Page
}

// PageCursor is the running position of one layout invocation.
type PageCursor struct {
	// Y is the next free vertical position.
	Y float64

	// Page is the 1-based number of the current page.
	Page int

	// Height is the page height the cursor runs on.
	Height float64
}

// Remaining is the vertical space between the cursor and the bottom edge.
func (c PageCursor) Remaining() float64 {
	return c.Height - c.Y
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine lays out documents for one geometry.
type Engine struct {
	geometry Geometry
	measurer Measurer
}

// New returns an engine for the given page geometry and text measurer.
func New(geometry Geometry, measurer Measurer) *Engine {
	return &Engine{geometry: geometry, measurer: measurer}
}

// Geometry returns the page configuration of the engine.
func (e *Engine) Geometry() Geometry {
	return e.geometry
}

// Layout produces the pages for doc. It is deterministic: the same document,
// geometry and measurer always give the same result.
func (e *Engine) Layout(doc *nfce.Document) *Document {
	r := &renderer{geometry: e.geometry, measurer: e.measurer}
	r.newPage()

	r.placeTrailing(r.headerBlock(doc))

	r.place(r.itemHeaderBlock())
	for _, item := range doc.Items {
		r.placeItem(r.itemRowBlock(item))
	}

	r.placeTrailing(r.totalsBlock(doc.Totals))
	if len(doc.Payments) > 0 || doc.Change.IsPositive() {
		r.placeTrailing(r.paymentsBlock(doc))
	}
	r.placeTrailing(r.qrFooterBlock(doc))

	title := "DANFE NFC-e"
	if doc.AccessKey != "" {
		title += " " + doc.AccessKey
	}

	return &Document{
		Geometry: e.geometry,
		Title:    title,
		Pages:    r.pages,
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// renderer owns the cursor and the pages of a single Layout call.
type renderer struct {
	geometry Geometry
	measurer Measurer
	cursor   PageCursor
	pages    []Page
}

func (r *renderer) newPage() {
	r.pages = append(r.pages, Page{Number: len(r.pages) + 1})
	r.cursor = PageCursor{
		Y:      r.geometry.Margin,
		Page:   len(r.pages),
		Height: r.geometry.Height,
	}
}

// blank reports whether nothing was drawn on the current page yet.
func (r *renderer) blank() bool {
	return len(r.pages[len(r.pages)-1].Ops) == 0
}

// place appends b at the cursor and advances it.
func (r *renderer) place(b *block) {
	page := &r.pages[len(r.pages)-1]
	for _, op := range b.ops {
		op.Y += r.cursor.Y
		if op.Kind == OpLine {
			op.Y2 += r.cursor.Y
		}
		page.Ops = append(page.Ops, op)
	}
	r.cursor.Y += b.height
}

// continuePage starts a new page headed by the continuation title and,
// inside the item table, by the column header.
func (r *renderer) continuePage(withItemHeader bool) {
	r.newPage()
	r.place(r.continuationBlock())
	if withItemHeader {
		r.place(r.itemHeaderBlock())
	}
}

// placeItem places an item row, breaking first when the space left under the
// row would drop below the safety threshold.
func (r *renderer) placeItem(b *block) {
	if r.cursor.Remaining()-b.height < r.geometry.Safety {
		r.continuePage(true)
	}
	r.place(b)
}

// placeTrailing places a block, moving it to a new page when it would cross
// the bottom margin.
func (r *renderer) placeTrailing(b *block) {
	if r.cursor.Remaining()-b.height < r.geometry.Margin && !r.blank() {
		r.continuePage(false)
	}
	r.place(b)
}

// =============================================================================
// BLOCKS
// =============================================================================

// block collects operations relative to its own top edge.
type block struct {
	ops    []Op
	height float64
}

// newLine advances by one line at size and returns its baseline.
func (b *block) newLine(size float64) float64 {
	lh := lineHeight(size)
	b.height += lh
	return b.height - lh*0.25
}

func (b *block) gap(dy float64) {
	b.height += dy
}

func (b *block) text(x, baseline float64, s string, font Font) {
	if s == "" {
		return
	}
	b.ops = append(b.ops, Op{Kind: OpText, X: x, Y: baseline, Text: s, Font: font})
}

func (b *block) rule(x1, x2, width float64) {
	b.ops = append(b.ops, Op{Kind: OpLine, X: x1, Y: b.height, X2: x2, Y2: b.height, LineWidth: width})
}

func (r *renderer) left() float64  { return r.geometry.Margin }
func (r *renderer) right() float64 { return r.geometry.Width - r.geometry.Margin }

func (r *renderer) width(s string, f Font) float64 {
	return r.measurer.StringWidth(s, f)
}

// paragraph writes text wrapped to the content width. Text that fits on one
// line is written verbatim, inner spacing included.
func (r *renderer) paragraph(b *block, s string, f Font, align Align) {
	lines := []string{s}
	if r.width(s, f) > r.geometry.ContentWidth() {
		lines = Wrap(s, r.geometry.ContentWidth(), f, r.measurer, 0)
	}
	for _, line := range lines {
		baseline := b.newLine(f.Size)
		b.text(r.alignX(line, f, r.left(), r.geometry.ContentWidth(), align), baseline, line, f)
	}
}

// minCellSize is the smallest font size, in points, used for a number cell.
const minCellSize = 4.0

// shrinkToFit lowers the font size of s in quarter points until it fits
// maxWidth. Below minCellSize the text is cut instead.
func (r *renderer) shrinkToFit(s string, maxWidth float64, f Font) (string, Font) {
	for f.Size > minCellSize && r.width(s, f) > maxWidth {
		f.Size = math.Max(f.Size-0.25, minCellSize)
	}
	return Fit(s, maxWidth, f, r.measurer), f
}

// alignX resolves the left x of s inside the box [x, x+w].
func (r *renderer) alignX(s string, f Font, x, w float64, align Align) float64 {
	switch align {
	case AlignRight:
		return x + w - r.width(s, f)
	case AlignCenter:
		return x + (w-r.width(s, f))/2
	default:
		return x
	}
}

// labelValue writes a bold label followed by its value. The value continues
// on the same line when it fits, otherwise it wraps below the label.
func (r *renderer) labelValue(b *block, label, value string) {
	bold := Font{Bold: true, Size: r.geometry.BodySize}
	regular := Font{Size: r.geometry.BodySize}

	baseline := b.newLine(bold.Size)
	b.text(r.left(), baseline, label, bold)

	valueX := r.left() + r.width(label+" ", bold)
	if valueX+r.width(value, regular) <= r.right() {
		b.text(valueX, baseline, value, regular)
		return
	}
	for _, line := range Wrap(value, r.geometry.ContentWidth(), regular, r.measurer, 0) {
		b.text(r.left(), b.newLine(regular.Size), line, regular)
	}
}

func (r *renderer) continuationBlock() *block {
	b := &block{}
	f := Font{Bold: true, Size: r.geometry.TitleSize}
	r.paragraph(b, ContinuationTitleText, f, AlignCenter)
	b.gap(2)
	return b
}

func (r *renderer) headerBlock(doc *nfce.Document) *block {
	g := r.geometry
	b := &block{}

	r.paragraph(b, TitleText, Font{Bold: true, Size: g.TitleSize}, AlignCenter)
	b.gap(1.5)
	b.rule(r.left(), r.right(), 0.5)
	b.gap(1.5)

	r.paragraph(b, doc.Issuer.DisplayName(), Font{Bold: true, Size: g.HeadingSize}, AlignLeft)
	body := Font{Size: g.BodySize}
	for _, line := range doc.Issuer.Address.Lines() {
		r.paragraph(b, line, body, AlignLeft)
	}
	r.paragraph(b, "CNPJ: "+doc.Issuer.CNPJ+"   IE: "+doc.Issuer.IE, body, AlignLeft)
	b.gap(1.5)

	if doc.Number != "" {
		r.labelValue(b, "NFC-e nº:", doc.Number+"   Série: "+doc.Series)
	}
	r.labelValue(b, "CHAVE DE ACESSO:", numfmt.FormatKey(doc.AccessKey))
	if doc.IssuedAt != "" {
		r.labelValue(b, "Emissão:", doc.IssuedAt)
	}
	r.labelValue(b, "Consumidor:", doc.Recipient.Label())

	b.gap(1.5)
	b.rule(r.left(), r.right(), 0.5)
	b.gap(1.5)
	return b
}

func (r *renderer) itemHeaderBlock() *block {
	g := r.geometry
	b := &block{}
	f := Font{Bold: true, Size: g.ItemSize}

	baseline := b.newLine(f.Size)
	x := r.left()
	for i, w := range g.ColumnWidths() {
		col := g.Columns[i]
		title := Fit(col.Title, w-2*g.Pad, f, r.measurer)
		b.text(r.alignX(title, f, x+g.Pad, w-2*g.Pad, col.Align), baseline, title, f)
		x += w
	}
	b.gap(1)
	b.rule(r.left(), r.right(), 0.3)
	b.gap(1)
	return b
}

func (r *renderer) itemRowBlock(item nfce.LineItem) *block {
	g := r.geometry
	b := &block{}
	f := Font{Size: g.ItemSize}
	widths := g.ColumnWidths()

	cells := []string{
		Fit(truncate(item.Code, 12), widths[0]-2*g.Pad, f, r.measurer),
		"",
		numfmt.Quantity(item.Quantity),
		Fit(item.Unit, widths[3]-2*g.Pad, f, r.measurer),
		numfmt.BRL(item.UnitPrice),
		numfmt.BRL(item.Total),
	}
	fonts := make([]Font, len(cells))
	for i := range cells {
		fonts[i] = f
	}
	for _, i := range []int{2, 4, 5} {
		cells[i], fonts[i] = r.shrinkToFit(cells[i], widths[i]-2*g.Pad, f)
	}
	description := Wrap(item.Description, widths[1]-2*g.Pad, f, r.measurer, 2)

	first := b.newLine(f.Size)
	x := r.left()
	for i, w := range widths {
		if i == 1 {
			for n, line := range description {
				baseline := first
				if n > 0 {
					baseline = b.newLine(f.Size)
				}
				b.text(x+g.Pad, baseline, line, f)
			}
		} else {
			b.text(r.alignX(cells[i], fonts[i], x+g.Pad, w-2*g.Pad, g.Columns[i].Align), first, cells[i], fonts[i])
		}
		x += w
	}
	b.gap(1.2)
	return b
}

func (r *renderer) totalsBlock(t nfce.Totals) *block {
	g := r.geometry
	b := &block{}
	body := Font{Size: g.BodySize}

	b.gap(1.5)
	b.rule(r.left(), r.right(), 0.3)
	b.gap(1.5)

	r.paragraph(b, "Totais", Font{Bold: true, Size: g.HeadingSize}, AlignLeft)
	r.paragraph(b, "Valor dos Produtos: "+numfmt.BRL(t.Products), body, AlignLeft)
	r.paragraph(b, "Descontos: "+numfmt.BRL(t.Discount)+"    Outros: "+numfmt.BRL(t.Other), body, AlignLeft)
	b.gap(1)
	r.paragraph(b, "VALOR A PAGAR: "+numfmt.BRL(t.NetPayable), Font{Bold: true, Size: g.TotalSize}, AlignRight)
	b.gap(1.5)
	return b
}

func (r *renderer) paymentsBlock(doc *nfce.Document) *block {
	g := r.geometry
	b := &block{}
	body := Font{Size: g.BodySize}

	b.rule(r.left(), r.right(), 0.3)
	b.gap(1.5)
	r.paragraph(b, "Pagamentos", Font{Bold: true, Size: g.HeadingSize}, AlignLeft)

	for _, p := range doc.Payments {
		r.amountLine(b, p.Label(), numfmt.BRL(p.Amount), body)
	}
	if doc.Change.IsPositive() {
		r.amountLine(b, "Troco", numfmt.BRL(doc.Change), Font{Bold: true, Size: g.BodySize})
	}
	b.gap(1.5)
	return b
}

// amountLine writes a label on the left and an amount flush right on the
// label's first line. Long labels wrap in the space left of the amount.
func (r *renderer) amountLine(b *block, label, amount string, f Font) {
	amountWidth := r.width(amount, f)
	lines := Wrap(label, r.geometry.ContentWidth()-amountWidth-2, f, r.measurer, 0)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		baseline := b.newLine(f.Size)
		b.text(r.left(), baseline, line, f)
		if i == 0 {
			b.text(r.right()-amountWidth, baseline, amount, f)
		}
	}
}

// minQRTextWidth is the narrowest text column allowed beside the QR code.
const minQRTextWidth = 60

func (r *renderer) qrFooterBlock(doc *nfce.Document) *block {
	g := r.geometry
	b := &block{}
	small := Font{Size: g.SmallSize}
	smallBold := Font{Bold: true, Size: g.SmallSize}
	key := numfmt.FormatKey(doc.AccessKey)

	b.rule(r.left(), r.right(), 0.3)
	b.gap(2)

	switch {
	case doc.QRCodeURL == "":
		r.paragraph(b, QRMissingText, small, AlignLeft)
		b.gap(1.5)

	case g.ContentWidth()-g.QRSize-3 >= minQRTextWidth:
		top := b.height
		b.ops = append(b.ops, Op{Kind: OpQRCode, X: r.left(), Y: top, Size: g.QRSize, Text: doc.QRCodeURL})

		textX := r.left() + g.QRSize + 3
		textWidth := r.right() - textX
		text := &block{height: top}
		for _, run := range []struct {
			s string
			f Font
		}{{QRInstructionText, small}, {QRPortalText, small}, {key, smallBold}} {
			for _, line := range Wrap(run.s, textWidth, run.f, r.measurer, 0) {
				text.text(textX, text.newLine(run.f.Size), line, run.f)
			}
			text.gap(1.5)
		}
		b.ops = append(b.ops, text.ops...)
		b.height = max(top+g.QRSize, text.height) + 2

	default:
		b.ops = append(b.ops, Op{Kind: OpQRCode, X: r.left() + (g.ContentWidth()-g.QRSize)/2, Y: b.height, Size: g.QRSize, Text: doc.QRCodeURL})
		b.gap(g.QRSize + 2)
		r.paragraph(b, QRInstructionText, small, AlignCenter)
		r.paragraph(b, QRPortalText, small, AlignCenter)
		r.paragraph(b, key, smallBold, AlignCenter)
		b.gap(1.5)
	}

	r.paragraph(b, FooterText, Font{Size: g.FooterSize}, AlignCenter)
	return b
}
