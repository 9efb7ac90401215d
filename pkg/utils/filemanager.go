// =============================================================================
// Guarantee Summary Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Input filtering and discovery
//   - Output path derivation
//   - Atomic file writes
//   - Batch summary generation
//
// OUTPUT STRATEGY:
//   - Outputs are written next to their input file
//   - Every output is written to a hidden temporary file in the same
//     directory and renamed into place, so readers never see a partial file
//   - Failed files produce no output at all
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// FilterExisting returns the paths that name existing regular files, in the
// given order. Missing paths and directories are dropped silently.
func FilterExisting(paths []string) []string {
	var result []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		result = append(result, path)
	}

	return result
}

// DiscoverInputFiles scans a directory for files matching the pattern.
//
// PARAMETERS:
//   - inputDir: The directory to scan (not recursive).
//   - pattern: A glob pattern to match files (e.g., "*.txt").
//              If empty, defaults to "*.txt".
//
// RETURNS:
//   - A sorted slice of file paths.
//   - An error if the pattern is malformed.
func DiscoverInputFiles(inputDir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.txt"
	}

	files, err := filepath.Glob(filepath.Join(inputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	result := FilterExisting(files)
	sort.Strings(result)

	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputPathFor replaces the extension of inputPath with suffix.
//
// EXAMPLE:
//   OutputPathFor("/data/export.txt", "_Riepilogo_Garanzie.pdf")
//   -> "/data/export_Riepilogo_Garanzie.pdf"
func OutputPathFor(inputPath, suffix string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + suffix
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to path through a temporary file in the same
// directory. On error the temporary file is removed and path is untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	cleanup := func(cause error) error {
		file.Close()
		os.Remove(tmpPath)
		return cause
	}

	if _, err := file.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write temporary file: %w", err))
	}
	if err := file.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync temporary file: %w", err))
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string              `yaml:"run_id"`
	StartTime       time.Time           `yaml:"start_time"`
	EndTime         time.Time           `yaml:"end_time"`
	Duration        string              `yaml:"duration"`
	TotalFiles      int                 `yaml:"total_files"`
	SuccessfulFiles int                 `yaml:"successful_files"`
	FailedFiles     int                 `yaml:"failed_files"`
	ProcessedFiles  []ProcessedFileInfo `yaml:"processed_files,omitempty"`
	FailedFilesList []FailedFileInfo    `yaml:"failed_files_list,omitempty"`
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string   `yaml:"input_file"`
	OutputFiles []string `yaml:"output_files"`
	Records     int      `yaml:"records"`
	Duplicates  int      `yaml:"duplicates"`
	Gross       string   `yaml:"gross"`
	VAT         string   `yaml:"vat"`
	Total       string   `yaml:"total"`
	ProcessTime string   `yaml:"process_time"`
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string `yaml:"input_file"`
	ErrorType    string `yaml:"error_type"`
	ErrorMessage string `yaml:"error_message"`
}

// WriteSummaryLog writes a processing summary as YAML.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file. Created if missing.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	if summary.Duration == "" {
		summary.Duration = summary.EndTime.Sub(summary.StartTime).String()
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("riepilogo_summary_%s.yaml", timestamp))

	if err := WriteFileAtomic(summaryPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryPath, nil
}
