package converter

import (
	"log/slog"
	"time"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
	"github.com/ginjaninja78/guarantee-summary/internal/money"
	"github.com/ginjaninja78/guarantee-summary/pkg/utils"
)

// ProcessAll converts every path in order, one at a time. A failing file
// does not stop the batch. report, when not nil, is called with each result
// as soon as it is known.
func ProcessAll(paths []string, mainConfig *config.MainConfig, options Options, logger *slog.Logger, report func(Result)) []Result {
	results := make([]Result, 0, len(paths))

	for _, path := range paths {
		result := New(path, mainConfig, options, logger).Run()
		results = append(results, result)

		if report != nil {
			report(result)
		}
	}

	return results
}

// Summarize builds the batch summary written to the summary directory.
func Summarize(runID string, start, end time.Time, results []Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start).String(),
		TotalFiles: len(results),
	}

	for _, r := range results {
		if !r.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorType:    r.Kind.String(),
				ErrorMessage: r.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++

		var outputs []string
		if r.OutputFile != "" {
			outputs = append(outputs, r.OutputFile)
		}
		outputs = append(outputs, r.ExtraFiles...)

		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			OutputFiles: outputs,
			Records:     r.Stats.RecordsWritten,
			Duplicates:  r.Stats.DuplicatesDropped,
			Gross:       money.FormatWhole(r.Totals.Gross),
			VAT:         r.Totals.VAT.StringFixed(money.Places),
			Total:       r.Totals.TotalWithVAT.StringFixed(money.Places),
			ProcessTime: r.Stats.ProcessingTime.String(),
		})
	}

	return summary
}
