// =============================================================================
// NFC-e to PDF Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (danfe)
//   ├── processCmd     (danfe process <source> <destination>)
//   ├── initConfigCmd  (danfe init-config [path])
//   └── versionCmd     (danfe version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   that need settings call loadConfig, which layers the YAML file,
//   DANFE_* environment variables and the command's own flags, then builds
//   the logger from the result.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/config"
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "danfe",
	Short: "NFC-e to PDF Converter - Render NFC-e XML files as DANFE PDFs",
	Long: `danfe renders Brazilian consumer electronic invoices (NFC-e, model 65)
as printable DANFE documents, on A4 sheets or 80mm thermal rolls, and collects
every purchased item into one spreadsheet.

Key Features:
  - A4 and 80mm roll layouts with automatic page breaks
  - Item table export to XLSX or CSV across a whole batch
  - One broken XML never stops the rest of the batch
  - Settings from danfe.yaml, DANFE_* environment variables or flags

Example Usage:
  danfe process nota.xml nota.pdf              # Convert one file
  danfe process ./xml ./pdf --paper 80mm       # Convert a directory
  danfe process ./xml ./pdf --excel itens.csv  # ...and export items as CSV
  danfe init-config                            # Write a default danfe.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file (read only if present unless given explicitly)",
	)

	// --verbose flag: forces the debug log level.
	rootCmd.PersistentFlags().BoolP(
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig resolves the settings for cmd and builds the logger.
//
// RETURNS:
//   - The validated configuration.
//   - A logger writing where the configuration says.
//   - An error if the configuration is invalid or the log file cannot be opened.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path := config.ResolvePath(cfgFile, cmd.Flags().Changed("config"))

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if path != "" {
		logger.Debug("Configuration loaded", zap.String("path", path))
	}

	return cfg, logger, nil
}
