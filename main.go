// =============================================================================
// Guarantee Summary Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the riepilogo CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   riepilogo FILE.txt [FILE.txt ...]   - Convert the given exports
//   riepilogo process --input-dir DIR   - Convert every .txt in a directory
//   riepilogo version                   - Display the application version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/txtparser  : Row extraction, deduplication and ordering
//   - internal/money      : VAT arithmetic and euro formatting
//   - internal/pdfwriter  : PDF summary rendering
//   - internal/xlsxwriter : Optional XLSX companion
//   - internal/converter  : Per-file pipeline and batch driver
//   - pkg/utils           : File discovery, atomic writes, batch summary
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/guarantee-summary/cmd"
)

func main() {
	cmd.Execute()
}
