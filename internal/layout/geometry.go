package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPaper is returned by PaperByName for names that select no preset.
var ErrUnknownPaper = errors.New("unknown paper preset")

// PointToMM converts typographic points to millimetres.
const PointToMM = 25.4 / 72

// Align is the horizontal alignment of a column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column is one item table column. Width is a fraction of the content width.
type Column struct {
	Title    string
	Fraction float64
	Align    Align
}

// Geometry is a fixed page configuration. Lengths are in millimetres and font
// sizes in points.
type Geometry struct {
	Name   string
	Width  float64
	Height float64
	Margin float64

	// Safety is the minimum space that must remain below an item row,
	// measured from the bottom edge of the page.
	Safety float64

	// QRSize is the side of the QR code square.
	QRSize float64

	// Pad is the horizontal padding inside item table cells.
	Pad float64

	TitleSize   float64
	HeadingSize float64
	BodySize    float64
	ItemSize    float64
	TotalSize   float64
	SmallSize   float64
	FooterSize  float64

	Columns []Column
}

// ContentWidth is the page width inside the margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// ColumnWidths resolves the column fractions against the content width.
func (g Geometry) ColumnWidths() []float64 {
	widths := make([]float64, len(g.Columns))
	for i, c := range g.Columns {
		widths[i] = c.Fraction * g.ContentWidth()
	}
	return widths
}

// A4 is the standard sheet preset: 210x297 mm with 12 mm margins.
func A4() Geometry {
	return Geometry{
		Name:        "A4",
		Width:       210,
		Height:      297,
		Margin:      12,
		Safety:      40,
		QRSize:      34,
		Pad:         1,
		TitleSize:   11,
		HeadingSize: 10,
		BodySize:    9,
		ItemSize:    9,
		TotalSize:   12,
		SmallSize:   8,
		FooterSize:  7,
		Columns: []Column{
			{Title: "CÓD", Fraction: 0.14, Align: AlignLeft},
			{Title: "DESCRIÇÃO", Fraction: 0.42, Align: AlignLeft},
			{Title: "QTD", Fraction: 0.11, Align: AlignRight},
			{Title: "UN", Fraction: 0.07, Align: AlignLeft},
			{Title: "V.UNIT", Fraction: 0.13, Align: AlignRight},
			{Title: "V.TOTAL", Fraction: 0.13, Align: AlignRight},
		},
	}
}

// Roll80 is the 80 mm thermal roll preset: 80x280 mm with 5 mm margins. The
// item table is narrower, so it uses its own fractions and smaller fonts.
func Roll80() Geometry {
	return Geometry{
		Name:        "80mm",
		Width:       80,
		Height:      280,
		Margin:      5,
		Safety:      40,
		QRSize:      34,
		Pad:         0.5,
		TitleSize:   9,
		HeadingSize: 8,
		BodySize:    7,
		ItemSize:    6.5,
		TotalSize:   9,
		SmallSize:   6.5,
		FooterSize:  5.5,
		Columns: []Column{
			{Title: "CÓD", Fraction: 0.15, Align: AlignLeft},
			{Title: "DESCRIÇÃO", Fraction: 0.31, Align: AlignLeft},
			{Title: "QTD", Fraction: 0.16, Align: AlignRight},
			{Title: "UN", Fraction: 0.08, Align: AlignLeft},
			{Title: "V.UNIT", Fraction: 0.15, Align: AlignRight},
			{Title: "V.TOTAL", Fraction: 0.15, Align: AlignRight},
		},
	}
}

// PaperByName selects a preset. Names are case-insensitive; "a4" selects the
// sheet and anything starting with "80" selects the roll.
func PaperByName(name string) (Geometry, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "a4":
		return A4(), nil
	case strings.HasPrefix(n, "80"):
		return Roll80(), nil
	default:
		return Geometry{}, fmt.Errorf("%w: %q", ErrUnknownPaper, name)
	}
}

// lineHeight is the vertical advance of one text line at size points.
func lineHeight(size float64) float64 {
	return size * PointToMM * 1.25
}
