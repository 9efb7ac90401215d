// =============================================================================
// Guarantee Summary Converter - XLSX Writer Module
// =============================================================================
//
// This module writes an optional workbook next to the PDF, for users who want
// to reconcile the summary in a spreadsheet. It carries the same content as
// the PDF, with numbers stored as numbers.
//
// SHEET LAYOUT ("Riepilogo"):
//
//   A                 B          C                    D
//   NUMERO GARANZIA   SUFFISSO   JOB                  TOTALE JOB
//   1234567           01         100                  500
//   1234567           02         50                   -20
//
//                                Totale               480
//                                IVA 22%              105.60
//                                Totale IVA inclusa   585.60
//
// Guarantee numbers and suffixes are written as text so leading zeros stay.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/ginjaninja78/guarantee-summary/internal/money"
	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"github.com/ginjaninja78/guarantee-summary/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet of the workbook.
const SheetName = "Riepilogo"

// euroFormat shows amounts with two decimals and the euro sign.
var euroFormat = `#,##0.00 "€"`

// Write builds the workbook and writes it to path atomically.
func Write(path string, records types.RecordSet, totals types.Totals) error {
	f, err := build(records, totals)
	if err != nil {
		return err
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to render workbook: %w", err)
	}

	if err := utils.WriteFileAtomic(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// build fills a new workbook. The caller closes it.
func build(records types.RecordSet, totals types.Totals) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeTable(f, records); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeTotals(f, len(records)+3, totals); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetColWidth(SheetName, "A", "D", 20); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	return f, nil
}

// writeTable writes the header on row 1 and one record per row after it.
func writeTable(f *excelize.File, records types.RecordSet) error {
	header := make([]interface{}, len(types.Header))
	for i, h := range types.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []interface{}{r.GuaranteeNumber, r.Suffix, r.Job, r.JobTotal}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return nil
}

// writeTotals writes the three totals rows starting at firstRow, in
// columns C (label) and D (value).
func writeTotals(f *excelize.File, firstRow int, totals types.Totals) error {
	euroStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &euroFormat})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}

	rows := []struct {
		label string
		value interface{}
		euro  bool
	}{
		{types.LabelGross, wholeCellValue(totals.Gross), false},
		{types.LabelVATPrefix + money.FormatPercent(totals.Rate) + "%", totals.VAT.InexactFloat64(), true},
		{types.LabelTotalWithVAT, totals.TotalWithVAT.InexactFloat64(), true},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(3, firstRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(4, firstRow+i)

		if err := f.SetCellValue(SheetName, labelCell, row.label); err != nil {
			return fmt.Errorf("failed to write %s: %w", row.label, err)
		}
		if err := f.SetCellValue(SheetName, valueCell, row.value); err != nil {
			return fmt.Errorf("failed to write %s: %w", row.label, err)
		}
		if row.euro {
			if err := f.SetCellStyle(SheetName, valueCell, valueCell, euroStyle); err != nil {
				return fmt.Errorf("failed to style %s: %w", row.label, err)
			}
		}
	}

	return nil
}

// wholeCellValue keeps the gross total exact when it fits an int64; larger
// sums fall back to a float, as any spreadsheet number would.
func wholeCellValue(amount decimal.Decimal) interface{} {
	if whole := amount.BigInt(); whole.IsInt64() {
		return whole.Int64()
	}
	return amount.InexactFloat64()
}
