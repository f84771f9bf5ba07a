// =============================================================================
// NFC-e to PDF Converter - Shared Types
// =============================================================================
//
// This package contains types shared by several modules so that none of them
// has to import another just for a data shape. Types defined here are used by:
//   - nfce      (produces export rows from a document)
//   - converter (accumulates rows across a batch)
//   - export    (serializes rows to a table)
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// EXPORT ROWS
// =============================================================================

// ExportColumns is the fixed header of the item table, in column order.
var ExportColumns = []string{
	"DATE ISSUED",
	"AUTH KEY",
	"CODE",
	"DESCRIPTION",
	"QTY",
	"UNIT",
	"UNIT PRICE",
	"LINE TOTAL",
}

// ExportRow is one line item of one document, tagged with its parent
// document's issue timestamp and access key.
type ExportRow struct {
	// IssuedAt is the formatted issue timestamp ("02/01/2006 15:04:05"), or
	// the raw source text when it could not be parsed.
	IssuedAt string

	// AccessKey is the 44-digit key of the parent document (may be empty).
	AccessKey string

	Code        string
	Description string

	// Quantity keeps the full precision found in the source document.
	Quantity decimal.Decimal

	Unit string

	// UnitPrice and Total are rounded to 2 places.
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}
