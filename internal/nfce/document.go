// =============================================================================
// NFC-e to PDF Converter - Invoice Model
// =============================================================================
//
// Normalized, immutable representation of one NFC-e document. A Document is
// built once per source file by Build, handed to the layout engine and the
// exporter, and then discarded.
//
// All money values are fixed-point decimals rounded half-up to 2 places.
// Quantities keep the precision found in the source.
//
// =============================================================================

package nfce

import (
	"strings"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one consumer invoice.
type Document struct {
	// AccessKey holds up to 44 digits; empty when the source has none.
	AccessKey string

	// IssuedAt is "02/01/2006 15:04:05", the raw source text when the
	// timestamp could not be parsed, or "" when absent.
	IssuedAt string

	// Number and Series identify the document within the issuer (ide/nNF,
	// ide/serie).
	Number string
	Series string

	Issuer    Issuer
	Recipient Recipient

	// Items preserves source order.
	Items []LineItem

	Totals Totals

	// Payments preserves source order and may be empty.
	Payments []Payment

	// Change is the change due to the consumer (pag/vTroco).
	Change decimal.Decimal

	// QRCodeURL is the consultation URL from infNFeSupl/qrCode, if any.
	QRCodeURL string
}

// Issuer is the emitting establishment.
type Issuer struct {
	Name      string
	TradeName string
	CNPJ      string
	IE        string
	Address   Address
}

// DisplayName returns the trade name, the legal name, or "Emitente".
func (i Issuer) DisplayName() string {
	switch {
	case i.TradeName != "":
		return i.TradeName
	case i.Name != "":
		return i.Name
	default:
		return "Emitente"
	}
}

// Address is the issuer address (enderEmit).
type Address struct {
	Street   string
	Number   string
	District string
	City     string
	State    string
	ZIP      string
}

// Lines returns the printable address lines, skipping empty parts:
// "street, number", "district - city/state" and "CEP zip".
func (a Address) Lines() []string {
	var lines []string

	if street := joinNonEmpty(", ", a.Street, a.Number); street != "" {
		lines = append(lines, street)
	}
	if locality := joinNonEmpty(" - ", a.District, joinNonEmpty("/", a.City, a.State)); locality != "" {
		lines = append(lines, locality)
	}
	if a.ZIP != "" {
		lines = append(lines, "CEP "+a.ZIP)
	}
	return lines
}

// Recipient is the consumer. Both fields are optional on an NFC-e.
type Recipient struct {
	Name string

	// TaxID is the CPF or, for companies, the CNPJ.
	TaxID string
}

// Label returns the name (or "Não informado") followed by the tax id in
// parentheses when present.
func (r Recipient) Label() string {
	name := r.Name
	if name == "" {
		name = "Não informado"
	}
	if r.TaxID != "" {
		return name + " (" + r.TaxID + ")"
	}
	return name
}

// LineItem is one product line (det/prod).
type LineItem struct {
	Code        string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Totals is the ICMSTot group. Absent values are zero.
type Totals struct {
	Products   decimal.Decimal
	Discount   decimal.Decimal
	Other      decimal.Decimal
	NetPayable decimal.Decimal
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportRows flattens the items into table rows tagged with the document's
// issue timestamp and access key.
func (d *Document) ExportRows() []types.ExportRow {
	rows := make([]types.ExportRow, 0, len(d.Items))
	for _, item := range d.Items {
		rows = append(rows, types.ExportRow{
			IssuedAt:    d.IssuedAt,
			AccessKey:   d.AccessKey,
			Code:        item.Code,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return rows
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
