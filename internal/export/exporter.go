// =============================================================================
// NFC-e to PDF Converter - Tabular Exporter
// =============================================================================
//
// Flattens the item rows accumulated over a batch into one table.
//
// FORMATS (selected by the destination extension):
//   - .xlsx  workbook with one sheet, typed numeric cells
//   - .csv   comma separated, dot decimal separator
//
// Column order is fixed by types.ExportColumns. The access key is always
// written as text so spreadsheet tools keep all 44 digits. Quantities keep
// their source precision; money columns carry 2 decimal places.
//
// =============================================================================

package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/numfmt"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	// ErrExportIO is returned when the destination cannot be created or written.
	ErrExportIO = errors.New("cannot write item table")

	// ErrUnsupportedFormat is returned for destinations with no serializer.
	ErrUnsupportedFormat = errors.New("unsupported item table format")
)

// SheetName is the worksheet holding the items in .xlsx output.
const SheetName = "Itens"

// DefaultFileName is the table file name used when only a directory is known.
const DefaultFileName = "NFCe_itens.xlsx"

// Exporter writes item tables.
type Exporter struct {
	logger *zap.Logger
}

// New creates an exporter logging to logger.
func New(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Supported reports whether dest has an extension Export can serialize.
func Supported(dest string) bool {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// Export writes rows to dest.
//
// RETURNS:
//   - The number of data rows written; 0 with a nil error when rows is empty
//     (nothing is created in that case).
//   - ErrUnsupportedFormat or ErrExportIO (wrapped) on failure.
func (e *Exporter) Export(rows []types.ExportRow, dest string) (int, error) {
	if len(rows) == 0 {
		e.logger.Info("No items to export", zap.String("path", dest))
		return 0, nil
	}

	var write func([]types.ExportRow, string) error
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".xlsx":
		write = writeXLSX
	case ".csv":
		write = writeCSV
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(dest))
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("%w: failed to create directory %s: %v", ErrExportIO, dir, err)
		}
	}

	if err := write(rows, dest); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExportIO, err)
	}

	e.logger.Info("Item table exported",
		zap.String("path", dest),
		zap.Int("rows", len(rows)))

	return len(rows), nil
}

// =============================================================================
// XLSX
// =============================================================================

func writeXLSX(rows []types.ExportRow, dest string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(types.ExportColumns))
	for i, title := range types.ExportColumns {
		header[i] = title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.IssuedAt,
			row.AccessKey,
			row.Code,
			row.Description,
			row.Quantity.InexactFloat64(),
			row.Unit,
			numfmt.Round2(row.UnitPrice).InexactFloat64(),
			numfmt.Round2(row.Total).InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	if err := formatSheet(f, len(rows)+1); err != nil {
		return err
	}
	return f.SaveAs(dest)
}

// formatSheet styles the header, number columns and widths of a sheet with
// lastRow rows.
func formatSheet(f *excelize.File, lastRow int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	quantityFormat := "#,##0.0000"
	quantityStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &quantityFormat})
	if err != nil {
		return err
	}
	// built-in format 4 is "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	last := fmt.Sprint(lastRow)
	styles := []struct {
		from, to string
		style    int
	}{
		{"A1", "H1", headerStyle},
		{"E2", "E" + last, quantityStyle},
		{"G2", "H" + last, moneyStyle},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(SheetName, s.from, s.to, s.style); err != nil {
			return err
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 20},
		{"B", "B", 48},
		{"C", "C", 16},
		{"D", "D", 40},
		{"E", "H", 12},
	}
	for _, w := range widths {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.AutoFilter(SheetName, "A1:H"+last, nil)
}

// =============================================================================
// CSV
// =============================================================================

// writeCSV writes rows with dot decimals so the file loads the same way in
// any locale.
func writeCSV(rows []types.ExportRow, dest string) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	records := [][]string{types.ExportColumns}
	for _, row := range rows {
		records = append(records, []string{
			row.IssuedAt,
			row.AccessKey,
			row.Code,
			row.Description,
			row.Quantity.String(),
			row.Unit,
			money(row.UnitPrice),
			money(row.Total),
		})
	}

	if err := w.WriteAll(records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func money(d decimal.Decimal) string {
	return numfmt.Round2(d).StringFixed(numfmt.CurrencyPlaces)
}
