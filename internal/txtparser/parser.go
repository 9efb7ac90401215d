// =============================================================================
// Guarantee Summary Converter - Text Export Parser Module
// =============================================================================
//
// This module is responsible for reading the fixed-width / space-delimited
// text export produced by the guarantee billing system and extracting the
// billing rows from it.
//
// A billing row looks like:
//
//   1234567   01   100   500   <anything else on the line is ignored>
//   ^^^^^^^   ^^   ^^^   ^^^
//   number    suf  job   job total (may be negative)
//
// Report headers, page footers and blank lines are not recognised as rows and
// are skipped. Rows may be indented.
//
// PARSING PROCESS:
//   1. Decode the raw bytes with a single-byte Western European charmap
//   2. Scan the whole document for every row occurrence
//   3. Coerce the numeric fields (see aggregate.go)
//   4. Deduplicate and sort (see aggregate.go)
//
// =============================================================================

package txtparser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoValidRows is returned when the document contains no billing row.
var ErrNoValidRows = errors.New("no valid rows found in TXT")

// =============================================================================
// ROW PATTERN
// =============================================================================

// ws matches the same characters as a Unicode-aware "\s": Go's \s is ASCII
// only and the exports contain NBSP (0xA0) padding.
const ws = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

// rowPattern matches one billing row. The trailing group stands in for a
// Unicode word boundary after the job total: it accepts any non-word rune or
// the end of the line.
var rowPattern = regexp.MustCompile(
	`(?m)^` + ws + `*(\d{7})` + ws + `+(\d+)` + ws + `+(\d+)` + ws + `+(-?\d+)(?:[^\p{L}\p{N}_]|$)`,
)

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// RawRow holds the text of the four fields of a matched row.
type RawRow struct {
	GuaranteeNumber string
	Suffix          string
	Job             string
	JobTotal        string
}

// Stats contains statistics about a parse.
type Stats struct {
	// Matched is the number of rows recognised in the document.
	Matched int

	// Duplicates is the number of rows dropped by deduplication.
	Duplicates int

	// Coerced is the number of numeric fields that could not be parsed and
	// were replaced by 0.
	Coerced int
}

// Parsed is the outcome of the extraction stage.
type Parsed struct {
	// Records is deduplicated and sorted.
	Records types.RecordSet

	// Stats describes what happened while parsing.
	Stats Stats
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a text export and returns its records.
//
// PARAMETERS:
//   - filePath: The path to the text file.
//   - settings: The input settings from the configuration.
//
// RETURNS:
//   - The deduplicated, sorted records and parse statistics.
//   - ErrNoValidRows if nothing matched, or an I/O or decoding error.
func Parse(filePath string, settings config.InputSettings) (Parsed, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to read file: %w", err)
	}

	text, err := Decode(raw, settings.Encoding)
	if err != nil {
		return Parsed{}, err
	}

	return ParseText(text)
}

// ParseText runs the extraction stage on already decoded text.
func ParseText(text string) (Parsed, error) {
	rows := ExtractRows(text)
	if len(rows) == 0 {
		return Parsed{}, ErrNoValidRows
	}

	records, coerced := Coerce(rows)
	unique := Dedupe(records)
	Sort(unique)

	return Parsed{
		Records: unique,
		Stats: Stats{
			Matched:    len(rows),
			Duplicates: len(records) - len(unique),
			Coerced:    coerced,
		},
	}, nil
}

// ExtractRows returns every billing row of text in document order.
func ExtractRows(text string) []RawRow {
	matches := rowPattern.FindAllStringSubmatch(text, -1)
	rows := make([]RawRow, 0, len(matches))

	for _, m := range matches {
		rows = append(rows, RawRow{
			GuaranteeNumber: m[1],
			Suffix:          m[2],
			Job:             m[3],
			JobTotal:        m[4],
		})
	}

	return rows
}

// =============================================================================
// DECODING
// =============================================================================

// Decode converts raw bytes to text using the named single-byte encoding.
// Every byte decodes to some rune; bytes without a mapping become U+FFFD.
func Decode(raw []byte, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode input as %s: %w", name, err)
	}

	return string(decoded), nil
}

// lookupEncoding maps a configured encoding name to a charmap.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "ISO-8859-1", "LATIN-1", "LATIN1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-15":
		return charmap.ISO8859_15, nil
	default:
		return nil, fmt.Errorf("unsupported input encoding: %q", name)
	}
}
