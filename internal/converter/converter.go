// =============================================================================
// Guarantee Summary Converter - Converter Module
// =============================================================================
//
// This module contains the per-file conversion pipeline. It chains the
// extraction stage and the report stage for a single text export.
//
// CONVERSION PIPELINE:
//   1. Read and decode the text export
//   2. Extract, coerce, deduplicate and sort the billing rows
//   3. Compute gross total, VAT and grand total
//   4. Render the PDF and write it next to the input
//   5. Optionally write the XLSX companion
//
// Every failure is captured in the Result; Run never returns an error and
// never panics, so one bad file cannot stop a batch.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
	"github.com/ginjaninja78/guarantee-summary/internal/logging"
	"github.com/ginjaninja78/guarantee-summary/internal/money"
	"github.com/ginjaninja78/guarantee-summary/internal/pdfwriter"
	"github.com/ginjaninja78/guarantee-summary/internal/txtparser"
	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"github.com/ginjaninja78/guarantee-summary/internal/xlsxwriter"
	"github.com/ginjaninja78/guarantee-summary/pkg/utils"
)

// writeXLSX writes the XLSX companion. Tests replace it to simulate failures.
var writeXLSX = xlsxwriter.Write

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Kind classifies the outcome of a file.
type Kind int

const (
	KindNone        Kind = iota // The file was converted.
	KindNoValidRows             // The export contained no billing row.
	KindGeneric                 // Any other failure (I/O, decoding, layout).
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoValidRows:
		return "no_valid_rows"
	default:
		return "generic"
	}
}

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated PDF.
	// This is empty if processing failed or in dry-run mode.
	OutputFile string

	// ExtraFiles lists other generated files (the XLSX companion).
	ExtraFiles []string

	// Success indicates whether the processing was successful.
	Success bool

	// DryRun is set when nothing was meant to be written.
	DryRun bool

	// Error contains the error if processing failed.
	Error error

	// Kind classifies Error.
	Kind Kind

	// Totals are the computed figures. Zero if parsing failed.
	Totals types.Totals

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsMatched is the number of billing rows found in the export.
	RowsMatched int

	// DuplicatesDropped is the number of rows removed by deduplication.
	DuplicatesDropped int

	// FieldsCoerced is the number of numeric fields replaced by 0.
	FieldsCoerced int

	// RecordsWritten is the number of rows in the summary table.
	RecordsWritten int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// StatusLines returns the console lines reporting this result.
func (r Result) StatusLines() []string {
	switch {
	case !r.Success:
		return []string{fmt.Sprintf("error on %s: %v", r.FilePath, r.Error)}
	case r.DryRun:
		return []string{fmt.Sprintf("checked: %s (%d records, total %s)",
			r.FilePath, r.Stats.RecordsWritten, money.FormatEUR(r.Totals.TotalWithVAT))}
	}

	lines := []string{"created: " + r.OutputFile}
	for _, extra := range r.ExtraFiles {
		lines = append(lines, "created: "+extra)
	}
	return lines
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options are per-run switches that complement the configuration.
type Options struct {
	// DryRun parses and totals without writing anything.
	DryRun bool

	// ExportXLSX also writes the XLSX companion.
	ExportXLSX bool
}

// Converter handles the conversion of a single text export.
type Converter struct {
	inputPath  string
	mainConfig *config.MainConfig
	options    Options
	logger     *slog.Logger
}

// New creates a new Converter instance. A nil logger discards diagnostics.
func New(inputPath string, mainConfig *config.MainConfig, options Options, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		options:    options,
		logger:     logger.With(slog.String("file", inputPath)),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.inputPath, DryRun: c.options.DryRun}

	// writtenPDF is set once the PDF is on disk and removed again if the
	// file fails afterwards.
	var writtenPDF string

	defer func() {
		if r := recover(); r != nil {
			if writtenPDF != "" {
				os.Remove(writtenPDF)
			}
			result.Success = false
			result.OutputFile = ""
			result.ExtraFiles = nil
			result.Error = fmt.Errorf("internal error: %v", r)
		}
		if result.Error != nil {
			result.Kind = classify(result.Error)
			c.logger.Error("conversion failed", "kind", result.Kind.String(), "error", result.Error)
		}
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: EXTRACT
	// =========================================================================

	parsed, err := txtparser.Parse(c.inputPath, c.mainConfig.Input())
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.RowsMatched = parsed.Stats.Matched
	result.Stats.DuplicatesDropped = parsed.Stats.Duplicates
	result.Stats.FieldsCoerced = parsed.Stats.Coerced
	result.Stats.RecordsWritten = len(parsed.Records)

	c.logger.Debug("parsed export",
		"rows", parsed.Stats.Matched,
		"duplicates", parsed.Stats.Duplicates,
		"records", len(parsed.Records))

	if parsed.Stats.Coerced > 0 {
		// Totals still include these rows with a 0 in place of the bad field.
		c.logger.Warn("numeric fields replaced by 0", "count", parsed.Stats.Coerced)
	}

	// =========================================================================
	// STEP 2: TOTALS
	// =========================================================================

	result.Totals = money.ComputeTotals(parsed.Records, c.mainConfig.Rate())

	if c.options.DryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 3: WRITE OUTPUTS
	// =========================================================================

	outputPath := utils.OutputPathFor(c.inputPath, c.mainConfig.OutputSuffix)
	if err := pdfwriter.Write(outputPath, parsed.Records, result.Totals, c.pdfOptions()); err != nil {
		result.Error = err
		return result
	}
	writtenPDF = outputPath

	if c.options.ExportXLSX || c.mainConfig.ExportXLSX {
		xlsxPath := utils.OutputPathFor(c.inputPath, c.mainConfig.XLSXSuffix())
		if err := writeXLSX(xlsxPath, parsed.Records, result.Totals); err != nil {
			// The file failed as a whole; do not leave half of its outputs.
			os.Remove(outputPath)
			result.Error = err
			return result
		}
		result.ExtraFiles = append(result.ExtraFiles, xlsxPath)
	}

	result.OutputFile = outputPath
	result.Success = true

	c.logger.Info("summary written",
		"output", outputPath,
		"records", len(parsed.Records),
		"gross", money.FormatWhole(result.Totals.Gross),
		"vat", result.Totals.VAT.StringFixed(money.Places))

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// pdfOptions maps the configuration onto the PDF writer options.
func (c *Converter) pdfOptions() pdfwriter.Options {
	options := pdfwriter.DefaultOptions()
	options.Title = c.mainConfig.Title
	options.Disclaimer = c.mainConfig.Disclaimer
	options.Compress = c.mainConfig.CompressPDF
	return options
}

// classify maps an error chain onto a Kind.
func classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, txtparser.ErrNoValidRows):
		return KindNoValidRows
	default:
		return KindGeneric
	}
}
