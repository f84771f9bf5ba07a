// =============================================================================
// NFC-e to PDF Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the danfe CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   danfe process <source> <destination>  - Render NFC-e XML files as PDFs
//   danfe init-config [path]              - Write a default configuration file
//   danfe version                         - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, layout, PDF output, export and batch logic
//   - pkg/           : Shared utilities (logging, file discovery)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/NFCe-to-PDF-conversion/cmd"
)

func main() {
	cmd.Execute()
}
