// =============================================================================
// NFC-e to PDF Converter - Converter Module
// =============================================================================
//
// This module contains the per-document pipeline. It turns one NFC-e XML
// file into one DANFE PDF.
//
// CONVERSION PIPELINE:
//   1. Parse the XML and build the invoice model
//   2. Check the access key and item list (warnings only)
//   3. Lay the model out on the configured paper
//   4. Write the PDF
//   5. Hand back the item rows for the table export
//
// A document that cannot be parsed fails on its own; a document with missing
// fields is still rendered with empty values.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/layout"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/nfce"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/pdfcanvas"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/types"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/validation"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated PDF.
	// This is empty if processing failed.
	OutputFile string

	// AccessKey is the 44-digit key of the document, if it has one.
	AccessKey string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Rows holds one export row per line item of the document.
	Rows []types.ExportRow

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Items is the number of line items in the document.
	Items int

	// Pages is the number of PDF pages written.
	Pages int

	// Warnings is the number of validation findings logged for the document.
	Warnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter renders NFC-e documents on one paper preset.
type Converter struct {
	engine    *layout.Engine
	canvas    *pdfcanvas.Canvas
	nameByKey bool
	logger    *zap.Logger
}

// New creates a new Converter.
//
// PARAMETERS:
//   - geometry: The paper preset to lay documents out on.
//   - nameByKey: Name output files after the access key when writing into
//                a directory.
//   - logger: Receives validation warnings. nil disables logging.
func New(geometry layout.Geometry, nameByKey bool, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		engine:    layout.New(geometry, pdfcanvas.NewMeasurer()),
		canvas:    pdfcanvas.New(nil),
		nameByKey: nameByKey,
		logger:    logger,
	}
}

// Geometry returns the paper preset in use.
func (c *Converter) Geometry() layout.Geometry {
	return c.engine.Geometry()
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert executes the pipeline for one file.
//
// PARAMETERS:
//   - src: The NFC-e XML file.
//   - dst: Either the PDF path to write (a name ending in .pdf) or the
//          directory to write it into. In the second case the file is named
//          by OutputPath.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Convert(src, dst string) Result {
	startTime := time.Now()
	result := Result{
		FilePath: src,
		Success:  false,
	}

	// =========================================================================
	// STEP 1: BUILD THE MODEL
	// =========================================================================

	doc, err := nfce.Load(src)
	if err != nil {
		result.Error = err
		return result
	}

	result.AccessKey = doc.AccessKey
	result.Stats.Items = len(doc.Items)

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================
	// Findings are logged only; they never fail the document.

	findings := validation.Validate(doc)
	result.Stats.Warnings = len(findings)
	for _, f := range findings {
		c.logger.Warn("Validation warning",
			zap.String("file", src),
			zap.String("field", f.Field),
			zap.String("rule", f.Rule),
			zap.String("message", f.Message),
		)
	}
	if len(findings) > 0 && c.logger.Core().Enabled(zap.DebugLevel) {
		c.logger.Debug("Validation report",
			zap.String("file", src),
			zap.String("report", validation.FormatErrors(findings)),
		)
	}

	// =========================================================================
	// STEP 3: LAYOUT AND WRITE
	// =========================================================================

	outputPath := dst
	if !utils.HasExtension(dst, ".pdf") {
		outputPath = OutputPath(src, dst, doc.AccessKey, c.nameByKey)
	}

	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		result.Error = fmt.Errorf("%w: %v", pdfcanvas.ErrRenderIO, err)
		return result
	}

	pages, err := c.canvas.WriteFile(outputPath, c.engine.Layout(doc))
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.OutputFile = outputPath
	result.Rows = doc.ExportRows()
	result.Stats.Pages = pages
	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// OutputPath returns the PDF path for src inside outDir.
//
// FILE NAMING:
//   - <outDir>/<key>.pdf when nameByKey is set and the key is known
//   - <outDir>/<source file name without extension>.pdf otherwise
//
// Two documents with the same key are written to the same file.
func OutputPath(src, outDir, key string, nameByKey bool) string {
	name := key
	if !nameByKey || name == "" {
		name = utils.Stem(src)
	}
	return filepath.Join(outDir, name+".pdf")
}
