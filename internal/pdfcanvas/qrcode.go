package pdfcanvas

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QREncoder turns a payload into a square bitmap of side pixels.
type QREncoder interface {
	Encode(payload string, pixels int) (image.Image, error)
}

// BarcodeQR encodes QR codes with medium error correction.
type BarcodeQR struct{}

// Encode implements QREncoder. The bitmap is 8-bit grayscale.
func (BarcodeQR) Encode(payload string, pixels int) (image.Image, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	scaled, err := barcode.Scale(code, pixels, pixels)
	if err != nil {
		return nil, fmt.Errorf("qr scale: %w", err)
	}
	return toGray(scaled), nil
}

// toGray copies img into an 8-bit grayscale image. gofpdf only accepts
// 8-bit PNG streams, while barcode.Scale yields a 16-bit color model.
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
