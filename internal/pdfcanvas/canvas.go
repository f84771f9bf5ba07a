// =============================================================================
// NFC-e to PDF Converter - PDF Canvas
// =============================================================================
//
// This package replays a laid out document (layout.Document) on a gofpdf
// page stream. It is the only code that knows about the PDF library:
//
//   - Measurer      text metrics for the layout engine
//   - Write         page stream generation
//   - QREncoder     QR bitmap generation for OpQRCode operations
//
// Output is deterministic. Creation and modification dates are fixed and the
// catalog is sorted, so the same layout always yields the same bytes.
//
// FONTS:
//   The core Helvetica faces are used with the cp1252 translator, which covers
//   every Portuguese character printed on a DANFE.
//
// =============================================================================

package pdfcanvas

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/layout"
	"github.com/jung-kurt/gofpdf"
)

// ErrRenderIO is returned when the page stream cannot be produced or written.
var ErrRenderIO = errors.New("cannot write page stream")

// fontFamily is the core font used for every text run.
const fontFamily = "Helvetica"

// qrPixels is the side, in pixels, of the bitmap embedded for a QR code.
const qrPixels = 400

// documentDate is stamped as creation and modification date of every file.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// =============================================================================
// PAGE STREAM
// =============================================================================

// Canvas writes laid out documents as PDF.
type Canvas struct {
	qr QREncoder
}

// New returns a canvas using enc for QR codes. A nil enc selects BarcodeQR.
func New(enc QREncoder) *Canvas {
	if enc == nil {
		enc = BarcodeQR{}
	}
	return &Canvas{qr: enc}
}

// Write renders doc to w.
//
// RETURNS:
//   - The number of pages written.
//   - An error wrapping ErrRenderIO if the stream could not be produced or
//     written.
func (c *Canvas) Write(w io.Writer, doc *layout.Document) (int, error) {
	g := doc.Geometry

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("danfe", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	images := 0
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case layout.OpText:
				pdf.SetFont(fontFamily, fontStyle(op.Font), op.Font.Size)
				pdf.Text(op.X, op.Y, tr(op.Text))

			case layout.OpLine:
				pdf.SetLineWidth(op.LineWidth * layout.PointToMM)
				pdf.Line(op.X, op.Y, op.X2, op.Y2)

			case layout.OpQRCode:
				images++
				name := fmt.Sprintf("qrcode-%d", images)
				if err := c.placeQR(pdf, name, op); err != nil {
					return 0, fmt.Errorf("%w: %v", ErrRenderIO, err)
				}
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRenderIO, err)
	}
	return pdf.PageCount(), nil
}

// WriteFile renders doc to path. A partially written file is removed on
// failure. Every error names path.
func (c *Canvas) WriteFile(path string, doc *layout.Document) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRenderIO, err)
	}

	pages, err := c.Write(f, doc)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %v", ErrRenderIO, closeErr)
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

// placeQR encodes the payload of op and draws it as a PNG image.
func (c *Canvas) placeQR(pdf *gofpdf.Fpdf, name string, op layout.Op) error {
	img, err := c.qr.Encode(op.Text, qrPixels)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, toGray(img)); err != nil {
		return fmt.Errorf("failed to encode QR bitmap: %w", err)
	}

	options := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, options, &buf)
	pdf.ImageOptions(name, op.X, op.Y, op.Size, op.Size, false, options, 0, "")
	return pdf.Error()
}

func fontStyle(f layout.Font) string {
	if f.Bold {
		return "B"
	}
	return ""
}
