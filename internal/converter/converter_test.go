package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
	"github.com/ginjaninja78/guarantee-summary/internal/txtparser"
	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `ELENCO GARANZIE - PAGINA 1
NUMERO  SUF  JOB  TOTALE
1234567   01   100   500
1234567   01   100   500
1234567   02   050   -20
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func listDir(t *testing.T, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	return matches
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	result := New(input, config.Default(), Options{}, nil).Run()

	require.True(t, result.Success, "error: %v", result.Error)
	assert.Equal(t, KindNone, result.Kind)
	assert.Equal(t, filepath.Join(dir, "export_Riepilogo_Garanzie.pdf"), result.OutputFile)
	assert.FileExists(t, result.OutputFile)
	assert.Empty(t, result.ExtraFiles)

	assert.Equal(t, "480", result.Totals.Gross.String())
	assert.Equal(t, "105.60", result.Totals.VAT.StringFixed(2))
	assert.Equal(t, "585.60", result.Totals.TotalWithVAT.StringFixed(2))

	assert.Equal(t, 3, result.Stats.RowsMatched)
	assert.Equal(t, 1, result.Stats.DuplicatesDropped)
	assert.Equal(t, 2, result.Stats.RecordsWritten)
	assert.Equal(t, []string{"created: " + result.OutputFile}, result.StatusLines())

	content, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.True(t, len(content) > 4 && string(content[:4]) == "%PDF")
}

func TestRunNoValidRows(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "empty.txt", "INTESTAZIONE\nnessuna riga\n")

	result := New(input, config.Default(), Options{}, nil).Run()

	assert.False(t, result.Success)
	assert.Equal(t, KindNoValidRows, result.Kind)
	assert.ErrorIs(t, result.Error, txtparser.ErrNoValidRows)
	assert.Empty(t, result.OutputFile)
	assert.Empty(t, listDir(t, dir, "*.pdf"))
	assert.Equal(t, []string{fmt.Sprintf("error on %s: %v", input, result.Error)}, result.StatusLines())
}

func TestRunMissingFile(t *testing.T) {
	input := filepath.Join(t.TempDir(), "gone.txt")

	result := New(input, config.Default(), Options{}, nil).Run()

	assert.False(t, result.Success)
	assert.Equal(t, KindGeneric, result.Kind)
	assert.Error(t, result.Error)
}

func TestRunRecoversPanic(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	cfg := config.Default()
	cfg.VATRate = "not-a-rate" // bypasses validation; Rate panics

	result := New(input, cfg, Options{}, nil).Run()

	assert.False(t, result.Success)
	assert.Equal(t, KindGeneric, result.Kind)
	assert.Contains(t, result.Error.Error(), "internal error")
	assert.Empty(t, listDir(t, dir, "*.pdf"))
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	result := New(input, config.Default(), Options{DryRun: true}, nil).Run()

	require.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.Equal(t, []string{input}, listDir(t, dir, "*"))
	assert.Equal(t,
		[]string{fmt.Sprintf("checked: %s (2 records, total 585,60 €)", input)},
		result.StatusLines())
}

func TestRunExportXLSX(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	result := New(input, config.Default(), Options{ExportXLSX: true}, nil).Run()

	require.True(t, result.Success, "error: %v", result.Error)
	xlsxPath := filepath.Join(dir, "export_Riepilogo_Garanzie.xlsx")
	assert.Equal(t, []string{xlsxPath}, result.ExtraFiles)
	assert.FileExists(t, xlsxPath)
	assert.Equal(t, []string{
		"created: " + result.OutputFile,
		"created: " + xlsxPath,
	}, result.StatusLines())
}

func stubXLSX(t *testing.T, stub func(string, types.RecordSet, types.Totals) error) {
	t.Helper()
	original := writeXLSX
	writeXLSX = stub
	t.Cleanup(func() { writeXLSX = original })
}

func TestRunXLSXFailureRemovesPDF(t *testing.T) {
	stubXLSX(t, func(string, types.RecordSet, types.Totals) error {
		return errors.New("disk full")
	})

	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	result := New(input, config.Default(), Options{ExportXLSX: true}, nil).Run()

	assert.False(t, result.Success)
	assert.Equal(t, KindGeneric, result.Kind)
	assert.EqualError(t, result.Error, "disk full")
	assert.Equal(t, []string{input}, listDir(t, dir, "*"))
}

func TestRunPanicAfterPDFRemovesPDF(t *testing.T) {
	stubXLSX(t, func(string, types.RecordSet, types.Totals) error {
		panic("excel exploded")
	})

	dir := t.TempDir()
	input := writeInput(t, dir, "export.txt", sampleExport)

	result := New(input, config.Default(), Options{ExportXLSX: true}, nil).Run()

	assert.False(t, result.Success)
	assert.Equal(t, KindGeneric, result.Kind)
	assert.Contains(t, result.Error.Error(), "excel exploded")
	assert.Empty(t, result.OutputFile)
	assert.Empty(t, result.ExtraFiles)
	assert.Equal(t, []string{input}, listDir(t, dir, "*"))
}

func TestRunUsesConfiguredSuffix(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "export.TXT", sampleExport)

	cfg := config.Default()
	cfg.OutputSuffix = "_summary.pdf"

	result := New(input, cfg, Options{}, nil).Run()

	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(dir, "export_summary.pdf"), result.OutputFile)
}

func TestProcessAllContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeInput(t, dir, "a.txt", "nothing useful\n")
	good := writeInput(t, dir, "b.txt", sampleExport)

	var reported []string
	results := ProcessAll([]string{bad, good}, config.Default(), Options{}, nil, func(r Result) {
		reported = append(reported, r.FilePath)
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, KindNoValidRows, results[0].Kind)
	assert.True(t, results[1].Success)
	assert.Equal(t, []string{bad, good}, reported)

	assert.Equal(t, []string{filepath.Join(dir, "b_Riepilogo_Garanzie.pdf")}, listDir(t, dir, "*.pdf"))
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	bad := writeInput(t, dir, "a.txt", "nothing useful\n")
	good := writeInput(t, dir, "b.txt", sampleExport)

	results := ProcessAll([]string{bad, good}, config.Default(), Options{}, nil, nil)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	summary := Summarize("run-1", start, start.Add(2*time.Second), results)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, "2s", summary.Duration)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)

	require.Len(t, summary.FailedFilesList, 1)
	assert.Equal(t, bad, summary.FailedFilesList[0].InputFile)
	assert.Equal(t, "no_valid_rows", summary.FailedFilesList[0].ErrorType)

	require.Len(t, summary.ProcessedFiles, 1)
	processed := summary.ProcessedFiles[0]
	assert.Equal(t, good, processed.InputFile)
	assert.Equal(t, 2, processed.Records)
	assert.Equal(t, 1, processed.Duplicates)
	assert.Equal(t, "480", processed.Gross)
	assert.Equal(t, "105.60", processed.VAT)
	assert.Equal(t, "585.60", processed.Total)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, classify(nil))
	assert.Equal(t, KindNoValidRows, classify(fmt.Errorf("reading x: %w", txtparser.ErrNoValidRows)))
	assert.Equal(t, KindGeneric, classify(errors.New("disk full")))
}
