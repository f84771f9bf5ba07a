// =============================================================================
// NFC-e to PDF Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which renders NFC-e XML files as
// DANFE PDFs.
//
// COMMAND USAGE:
//   danfe process <source> <destination> [flags]
//
// MODES:
//   - Source is a file, destination ends in .pdf:
//       the PDF is written to that path.
//   - Source is a file, destination is anything else:
//       the destination is a directory and the PDF is named after the
//       access key (or the source file name).
//   - Source is a directory:
//       every file matching --glob is converted into the destination
//       directory, and the items of all documents are exported to
//       <destination>/NFCe_itens.xlsx unless --excel or --no-excel says
//       otherwise.
//
// In single-file mode the table is only written when --excel (or
// excel.path in the configuration file) names a destination.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/config"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/converter"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/export"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process <source> <destination>",
	Short: "Render NFC-e XML files as DANFE PDFs",
	Long: `The process command reads one NFC-e XML file, or every matching file in a
directory, and writes one DANFE PDF per document.

Documents are processed one at a time. A file that cannot be parsed is
reported and skipped; the remaining files are still converted.

In directory mode the purchased items of every converted document are also
written to a single table (XLSX or CSV, chosen by the file extension).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, args[0], args[1])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
// Defaults mirror config.Default so an unset flag never changes a value from
// the configuration file.
func init() {
	rootCmd.AddCommand(processCmd)

	defaults := config.Default()
	flags := processCmd.Flags()

	flags.String("paper", defaults.Paper, "Paper preset: A4 or 80mm")
	flags.String("glob", defaults.Glob, "File name pattern matched in a source directory")
	flags.Bool("recursive", defaults.Recursive, "Also scan subdirectories of a source directory")
	flags.Bool("name-by-key", defaults.NameByKey, "Name PDFs after the access key instead of the source file")
	flags.String("excel", defaults.Excel.Path, "Item table destination (.xlsx or .csv)")
	flags.Bool("no-excel", false, "Skip the item table export")
	flags.String("log-level", defaults.Logger.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", defaults.Logger.Format, "Log format: console or json")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess dispatches to the file or directory mode.
func runProcess(cmd *cobra.Command, source, destination string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !utils.FileExists(source) {
		return fmt.Errorf("invalid source: %s does not exist", source)
	}
	if cfg.Excel.Enabled && cfg.Excel.Path != "" && !export.Supported(cfg.Excel.Path) {
		return fmt.Errorf("%w: %s (use .xlsx or .csv)", export.ErrUnsupportedFormat, cfg.Excel.Path)
	}

	conv := converter.New(cfg.Geometry(), cfg.NameByKey, logger)
	out := cmd.OutOrStdout()

	if utils.IsDir(source) {
		return processDirectory(out, cfg, conv, logger, source, destination)
	}
	return processFile(out, cfg, conv, logger, source, destination)
}

// processFile converts a single document. Its error is returned as is; it
// already names the file.
func processFile(out io.Writer, cfg *config.Config, conv *converter.Converter, logger *zap.Logger, source, destination string) error {
	result := conv.Convert(source, destination)
	if !result.Success {
		return result.Error
	}

	fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(source), result.OutputFile)

	if cfg.Excel.Enabled && cfg.Excel.Path != "" {
		n, err := export.New(logger).Export(result.Rows, cfg.Excel.Path)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(out, "  ✓ %d item(s) -> %s\n", n, cfg.Excel.Path)
		}
	}

	return nil
}

// processDirectory converts every matching document in source.
func processDirectory(out io.Writer, cfg *config.Config, conv *converter.Converter, logger *zap.Logger, source, destination string) error {
	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	if utils.HasExtension(destination, ".pdf") {
		return fmt.Errorf("destination must be a directory when the source is a directory: %s", destination)
	}

	files, err := utils.DiscoverFiles(source, cfg.Glob, cfg.Recursive)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No files matching %q found in %s\n", cfg.Glob, source)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(files))

	// =========================================================================
	// STEP 2: RUN THE BATCH
	// =========================================================================

	batch := converter.NewBatch(conv, destination, logger)
	if cfg.Excel.Enabled {
		batch.ExportPath = cfg.Excel.Path
		if batch.ExportPath == "" {
			batch.ExportPath = filepath.Join(destination, export.DefaultFileName)
		}
	}
	batch.Progress = func(done, total int) {
		logger.Debug("Progress", zap.Int("done", done), zap.Int("total", total))
	}

	summary := batch.Run(files)

	for _, result := range summary.Results {
		if result.Success {
			fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(result.FilePath), result.OutputFile)
		} else {
			fmt.Fprintf(out, "  ✗ %v\n", result.Error)
		}
	}

	// =========================================================================
	// STEP 3: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.Total)
	fmt.Fprintf(out, "Successful:      %d\n", summary.Succeeded)
	fmt.Fprintf(out, "Errors:          %d\n", summary.Failed)
	switch {
	case summary.ExportError != nil:
		fmt.Fprintf(out, "Item table:      failed (%v)\n", summary.ExportError)
	case summary.ExportFile != "":
		fmt.Fprintf(out, "Item table:      %s (%d rows)\n", summary.ExportFile, summary.Exported)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.Duration)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", summary.Failed, summary.Total)
	}
	return nil
}
