// =============================================================================
// NFC-e to PDF Converter - Batch Processing
// =============================================================================
//
// Batch drives the Converter over a list of source files. Documents are
// processed one at a time in lexical path order; a failure is recorded and
// logged and the run moves on to the next file. Item rows are accumulated
// across the run and written once at the end when a table destination is
// set.
//
// =============================================================================

package converter

import (
	"sort"
	"time"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/export"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgressFunc is called after each document with the number of documents
// done and the total.
type ProgressFunc func(done, total int)

// Batch processes many documents into one output directory.
type Batch struct {
	// Converter renders each document.
	Converter *Converter

	// OutputDir receives the PDFs.
	OutputDir string

	// ExportPath is the item table destination. Empty skips the export.
	ExportPath string

	// Progress is optional.
	Progress ProgressFunc

	logger *zap.Logger
}

// Summary is the outcome of a batch run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int

	// Results holds one entry per document, in processing order.
	Results []Result

	// Rows holds the item rows of every successful document.
	Rows []types.ExportRow

	// ExportFile is the table written, empty when none was.
	ExportFile string

	// Exported is the number of rows written to ExportFile.
	Exported int

	// ExportError is set when the table could not be written. The PDF
	// results are unaffected by it.
	ExportError error

	Duration time.Duration
}

// NewBatch creates a Batch writing into outputDir.
func NewBatch(conv *Converter, outputDir string, logger *zap.Logger) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{
		Converter: conv,
		OutputDir: outputDir,
		logger:    logger,
	}
}

// Run converts every file and, when ExportPath is set, writes the item
// table.
//
// RETURNS:
//   - The run summary. Per-document errors are in Summary.Results.
func (b *Batch) Run(files []string) Summary {
	startTime := time.Now()

	ordered := append([]string(nil), files...)
	sort.Strings(ordered)

	summary := Summary{
		RunID:   uuid.New().String(),
		Total:   len(ordered),
		Results: make([]Result, 0, len(ordered)),
	}
	logger := b.logger.With(zap.String("run_id", summary.RunID))

	logger.Info("Batch started",
		zap.Int("documents", summary.Total),
		zap.String("output_dir", b.OutputDir),
		zap.String("paper", b.Converter.Geometry().Name),
	)

	for i, file := range ordered {
		result := b.Converter.Convert(file, b.OutputDir)
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.Succeeded++
			summary.Rows = append(summary.Rows, result.Rows...)
			logger.Info("Document converted",
				zap.String("file", file),
				zap.String("output", result.OutputFile),
				zap.String("access_key", result.AccessKey),
				zap.Int("items", result.Stats.Items),
				zap.Int("pages", result.Stats.Pages),
				zap.Duration("duration", result.Stats.ProcessingTime),
			)
		} else {
			summary.Failed++
			logger.Error("Document failed",
				zap.String("file", file),
				zap.Error(result.Error),
			)
		}

		if b.Progress != nil {
			b.Progress(i+1, summary.Total)
		}
	}

	if b.ExportPath != "" {
		b.export(logger, &summary)
	}

	summary.Duration = time.Since(startTime)
	logger.Info("Batch finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
		zap.Duration("duration", summary.Duration),
	)

	return summary
}

// export writes the accumulated rows.
func (b *Batch) export(logger *zap.Logger, summary *Summary) {
	n, err := export.New(logger).Export(summary.Rows, b.ExportPath)
	if err != nil {
		summary.ExportError = err
		logger.Error("Item table export failed",
			zap.String("path", b.ExportPath),
			zap.Error(err),
		)
		return
	}
	if n > 0 {
		summary.ExportFile = b.ExportPath
		summary.Exported = n
	}
}
