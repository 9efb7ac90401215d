// =============================================================================
// Guarantee Summary Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command
// converts the files given as arguments, which is what happens when export
// files are dropped on the executable.
//
// COBRA CLI STRUCTURE:
//   rootCmd (riepilogo [files...])
//   ├── processCmd (riepilogo process)
//   └── versionCmd (riepilogo version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// Empty means the optional riepilogo.yaml in the working directory.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// usageHint is printed when no existing file was given.
const usageHint = `usage: riepilogo FILE.txt [FILE.txt ...]
Drop one or more text exports on the program, or pass them as arguments.
A PDF summary is written next to each file.`

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "riepilogo [files...]",
	Short: "Guarantee Summary - Turn guarantee billing exports into PDF summaries",
	Long: `riepilogo reads plain-text guarantee billing exports, extracts the billing
rows, removes duplicates, totals them with VAT and writes a one-table PDF
summary next to each input file.

Each file is handled on its own: an error on one file is reported and the
next file is processed. Paths that do not exist are ignored.

Example Usage:
  riepilogo export.txt                     # Writes export_Riepilogo_Garanzie.pdf
  riepilogo a.txt b.txt                    # Converts both files in order
  riepilogo process --input-dir ./exports  # Converts every .txt in a directory
  riepilogo --config ./riepilogo.yaml a.txt`,

	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, batchOptions{})
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
//
// Per-file failures never reach this point; only misuse (bad flags, bad
// configuration) exits with a non-zero status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Files dropped on the executable start it from Explorer; cobra would
	// otherwise refuse such a launch on Windows.
	cobra.MousetrapHelpText = ""

	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is riepilogo.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
