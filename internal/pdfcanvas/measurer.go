package pdfcanvas

import (
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/layout"
	"github.com/jung-kurt/gofpdf"
)

// Measurer measures text with the same fonts and encoding Write uses.
// It is not safe for concurrent use.
type Measurer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewMeasurer returns a measurer reporting widths in millimetres.
func NewMeasurer() *Measurer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &Measurer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// StringWidth implements layout.Measurer.
func (m *Measurer) StringWidth(text string, font layout.Font) float64 {
	m.pdf.SetFont(fontFamily, fontStyle(font), font.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}
