// =============================================================================
// Guarantee Summary Converter - PDF Writer Module
// =============================================================================
//
// This module is responsible for laying out the summary document. The
// structure is fixed:
//
//   Riepilogo Garanzie                          <- title
//
//   +-----------------+----------+-----+------------+
//   | NUMERO GARANZIA | SUFFISSO | JOB | TOTALE JOB |  <- repeated on every page
//   +-----------------+----------+-----+------------+
//   | 1234567         | 01       | 100 |        500 |
//   | 1234567         | 02       |  50 |        -20 |
//   +-----------------+----------+-----+------------+
//
//                 +--------------------+-----------+
//                 |             Totale |       480 |
//                 |            IVA 22% |  105,60 € |
//                 | Totale IVA inclusa |  585,60 € |
//                 +--------------------+-----------+
//
//   Disclaimer: ...                             <- small italics
//
// The document is rendered in memory and only then written to disk, so a
// layout error never leaves a partial file behind.
//
// =============================================================================

package pdfwriter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/guarantee-summary/internal/money"
	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"github.com/ginjaninja78/guarantee-summary/pkg/utils"
	"github.com/go-pdf/fpdf"
)

// =============================================================================
// PAGE GEOMETRY (millimetres, A4 portrait)
// =============================================================================

const (
	pageWidth    = 210.0
	marginLeft   = 20.0
	marginTop    = 20.0
	marginRight  = 20.0
	marginBottom = 20.0

	rowHeight       = 6.0
	spacerHeight    = 4.0
	disclaimerLineH = 3.5

	// gridWidth is 0.25pt expressed in millimetres.
	gridWidth = 0.25 * 25.4 / 72
)

var (
	// mainColumns are the widths of the main table columns.
	mainColumns = []float64{45, 30, 25, 40}

	// mainAlign aligns each body column: JOB centered, TOTALE JOB right.
	mainAlign = []string{"L", "L", "C", "R"}

	// totalsColumns are the widths of the label and value columns.
	totalsColumns = []float64{50, 40}
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// Options contains options for PDF generation.
type Options struct {
	// Title is printed at the top of the first page.
	Title string

	// Disclaimer is printed under the totals in small italics.
	// Newlines start a new line.
	Disclaimer string

	// Compress enables stream compression.
	// Default: true
	Compress bool

	// Creator is stored in the document metadata.
	Creator string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Title:    "Riepilogo Garanzie",
		Compress: true,
		Creator:  "riepilogo",
	}
}

// =============================================================================
// PDF GENERATION FUNCTIONS
// =============================================================================

// Write renders the summary and writes it to path atomically.
func Write(path string, records types.RecordSet, totals types.Totals, options Options) error {
	data, err := Generate(records, totals, options)
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	return nil
}

// Generate renders the summary document and returns the PDF bytes.
func Generate(records types.RecordSet, totals types.Totals, options Options) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCompression(options.Compress)
	pdf.SetTitle(options.Title, true)
	pdf.SetCreator(options.Creator, true)

	l := &layout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.AddPage()
	l.title(options.Title)
	pdf.Ln(spacerHeight)
	l.mainTable(records)
	pdf.Ln(spacerHeight)
	l.totalsTable(totals)
	pdf.Ln(spacerHeight)
	l.disclaimer(options.Disclaimer)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to lay out PDF: %w", pdf.Error())
	}

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buffer.Bytes(), nil
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout draws the document regions on a single fpdf document.
type layout struct {
	pdf *fpdf.Fpdf

	// tr converts UTF-8 text to the cp1252 encoding of the core fonts,
	// which is what makes "€" printable.
	tr func(string) string
}

func (l *layout) title(text string) {
	l.pdf.SetFont("Helvetica", "B", 14)
	l.pdf.CellFormat(0, 8, l.tr(text), "", 1, "L", false, 0, "")
}

// mainTable draws the header and one row per record. The header is drawn
// again at the top of every page the table continues on.
func (l *layout) mainTable(records types.RecordSet) {
	x := centeredX(mainColumns)
	l.tableHeader(x)

	l.pdf.SetFont("Helvetica", "", 10)
	for _, r := range records {
		if l.needsPageBreak(rowHeight) {
			l.pdf.AddPage()
			l.tableHeader(x)
			l.pdf.SetFont("Helvetica", "", 10)
		}

		cells := []string{
			r.GuaranteeNumber,
			r.Suffix,
			strconv.Itoa(r.Job),
			money.FormatInt(r.JobTotal),
		}
		l.row(x, mainColumns, mainAlign, cells, false)
	}
}

func (l *layout) tableHeader(x float64) {
	l.pdf.SetFont("Helvetica", "B", 10)
	l.pdf.SetFillColor(211, 211, 211)
	l.row(x, mainColumns, []string{"L", "L", "L", "L"}, types.Header, true)
}

// totalsTable draws the raw total, the VAT and the grand total.
func (l *layout) totalsTable(totals types.Totals) {
	x := centeredX(totalsColumns)
	align := []string{"R", "R"}

	rows := [][]string{
		{types.LabelGross, money.FormatWhole(totals.Gross)},
		{types.LabelVATPrefix + money.FormatPercent(totals.Rate) + "%", money.FormatEUR(totals.VAT)},
		{types.LabelTotalWithVAT, money.FormatEUR(totals.TotalWithVAT)},
	}

	if l.needsPageBreak(float64(len(rows)) * rowHeight) {
		l.pdf.AddPage()
	}

	l.pdf.SetFont("Helvetica", "", 10)
	for _, cells := range rows {
		l.row(x, totalsColumns, align, cells, false)
	}
}

func (l *layout) disclaimer(text string) {
	if text == "" {
		return
	}
	l.pdf.SetFont("Helvetica", "I", 7)
	l.pdf.SetX(marginLeft)
	l.pdf.MultiCell(0, disclaimerLineH, l.tr(text), "", "L", false)
}

// row draws one grid row starting at x.
func (l *layout) row(x float64, widths []float64, align []string, cells []string, fill bool) {
	l.pdf.SetDrawColor(0, 0, 0)
	l.pdf.SetLineWidth(gridWidth)
	l.pdf.SetX(x)
	for i, cell := range cells {
		l.pdf.CellFormat(widths[i], rowHeight, l.tr(cell), "1", 0, align[i], fill, 0, "")
	}
	l.pdf.Ln(rowHeight)
}

// needsPageBreak reports whether a block of height h would cross the bottom
// margin. It mirrors fpdf's own trigger so the automatic break never fires
// first.
func (l *layout) needsPageBreak(h float64) bool {
	_, pageHeight := l.pdf.GetPageSize()
	return l.pdf.GetY()+h > pageHeight-marginBottom
}

// centeredX returns the left edge that centers a table on the page.
func centeredX(widths []float64) float64 {
	total := 0.0
	for _, w := range widths {
		total += w
	}
	return (pageWidth - total) / 2
}
