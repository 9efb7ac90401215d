// =============================================================================
// Guarantee Summary Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command and the batch runner shared with
// the root command.
//
// COMMAND USAGE:
//   riepilogo process [files...] [flags]
//
// FLAGS:
//   --input-dir   : Also convert every .txt file in this directory
//   --xlsx        : Also write an XLSX companion next to each PDF
//   --dry-run     : Parse and total without writing any file
//   --summary-dir : Write a YAML batch summary to this directory
//
// PROCESSING PIPELINE:
//   1. Collect input files (arguments, then the input directory)
//   2. Drop paths that do not exist; with none left, print the usage hint
//   3. Load configuration
//   4. Convert each file in order, printing one status line per file
//   5. Write the batch summary, if requested
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
	"github.com/ginjaninja78/guarantee-summary/internal/converter"
	"github.com/ginjaninja78/guarantee-summary/internal/logging"
	"github.com/ginjaninja78/guarantee-summary/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputDir is scanned for .txt exports.
var inputDir string

// exportXLSX also writes the XLSX companion.
var exportXLSX bool

// dryRun parses and totals without writing output files.
var dryRun bool

// summaryDir receives the YAML batch summary.
var summaryDir string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Convert text exports into PDF summaries",
	Long: `The process command converts the given files and, with --input-dir, every
.txt file found in a directory (not recursive, in name order).

Files are converted one at a time. Errors in one file do not affect the
others; each file gets a status line on standard output:

  created: <pdf>
  error on <input>: <message>`,

	Args: cobra.ArbitraryArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		paths := append([]string{}, args...)

		if inputDir != "" {
			discovered, err := utils.DiscoverInputFiles(inputDir, "")
			if err != nil {
				return err
			}
			paths = append(paths, discovered...)
		}

		return runBatch(cmd, paths, batchOptions{
			converter: converter.Options{
				DryRun:     dryRun,
				ExportXLSX: exportXLSX,
			},
			summaryDir: summaryDir,
		})
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&inputDir,
		"input-dir",
		"",
		"Directory whose .txt files are converted",
	)

	processCmd.Flags().BoolVar(
		&exportXLSX,
		"xlsx",
		false,
		"Also write an XLSX companion next to each PDF",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse and total without writing output files",
	)

	processCmd.Flags().StringVar(
		&summaryDir,
		"summary-dir",
		"",
		"Directory for the YAML batch summary (overrides summary_dir)",
	)
}

// =============================================================================
// BATCH RUNNER
// =============================================================================

// batchOptions are the switches that differ between the root command and
// the process command.
type batchOptions struct {
	converter  converter.Options
	summaryDir string
}

// runBatch converts paths in order and reports every outcome.
//
// PARAMETERS:
//   - cmd: The running command; status lines go to its output writer.
//   - paths: Candidate input paths. Paths that are not regular files are dropped.
//   - options: Per-run switches.
//
// RETURNS:
//   - An error only if there are files to convert and the configuration or
//     the log file cannot be set up.
//     Per-file failures are reported on stdout and never returned.
func runBatch(cmd *cobra.Command, paths []string, options batchOptions) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: COLLECT INPUT FILES
	// =========================================================================
	// Nothing to convert needs no configuration.

	files := utils.FilterExisting(paths)
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), usageHint)
		return nil
	}

	// =========================================================================
	// STEP 2: LOAD CONFIGURATION
	// =========================================================================

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.New(mainConfig, verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	logger.Debug("starting batch", "files", len(files), "ignored", len(paths)-len(files))

	// =========================================================================
	// STEP 3: CONVERT FILES
	// =========================================================================

	out := cmd.OutOrStdout()
	results := converter.ProcessAll(files, mainConfig, options.converter, logger, func(r converter.Result) {
		for _, line := range r.StatusLines() {
			fmt.Fprintln(out, line)
		}
	})

	// =========================================================================
	// STEP 4: BATCH SUMMARY
	// =========================================================================

	dir := options.summaryDir
	if dir == "" {
		dir = mainConfig.SummaryDir
	}

	if dir != "" {
		summary := converter.Summarize(runID, startTime, time.Now(), results)
		summaryPath, err := utils.WriteSummaryLog(summary, dir)
		if err != nil {
			logger.Error("failed to write batch summary", "dir", dir, "error", err)
		} else {
			logger.Info("batch summary written", "path", summaryPath)
		}
	}

	logger.Info("batch complete", "files", len(results), "elapsed", time.Since(startTime).String())

	return nil
}
