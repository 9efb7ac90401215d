// =============================================================================
// Guarantee Summary Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - txtparser
//   - money
//   - pdfwriter
//   - xlsxwriter
//   - converter
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// RECORD TYPES
// =============================================================================

// Record is a single billing line extracted from the text export.
type Record struct {
	// GuaranteeNumber is the 7-digit guarantee identifier.
	// Leading zeros are significant, so it is always kept as text.
	GuaranteeNumber string

	// Suffix distinguishes entries under the same guarantee number.
	// Kept as text and compared lexicographically.
	Suffix string

	// Job is the billable unit identifier.
	Job int

	// JobTotal is the signed job amount in whole euros.
	JobTotal int64
}

// Key identifies a record for deduplication purposes.
type Key struct {
	GuaranteeNumber string
	Suffix          string
	Job             int
}

// Key returns the uniqueness key of the record.
func (r Record) Key() Key {
	return Key{GuaranteeNumber: r.GuaranteeNumber, Suffix: r.Suffix, Job: r.Job}
}

// Less reports whether r sorts before other.
// Order: guarantee number, then suffix (both as strings), then job (numeric).
func (r Record) Less(other Record) bool {
	if r.GuaranteeNumber != other.GuaranteeNumber {
		return r.GuaranteeNumber < other.GuaranteeNumber
	}
	if r.Suffix != other.Suffix {
		return r.Suffix < other.Suffix
	}
	return r.Job < other.Job
}

// RecordSet is an ordered sequence of records, sorted by Record.Less.
type RecordSet []Record

// =============================================================================
// TOTALS
// =============================================================================

// Totals holds the figures derived from a RecordSet.
type Totals struct {
	// Gross is the exact integer sum of all job totals. It is a decimal
	// so that no sum of int64 job totals can overflow.
	Gross decimal.Decimal

	// Rate is the VAT rate applied to Gross (for example 0.22).
	Rate decimal.Decimal

	// VAT is Gross * Rate rounded to 2 decimals, half away from zero.
	VAT decimal.Decimal

	// TotalWithVAT is Gross + VAT.
	TotalWithVAT decimal.Decimal
}

// =============================================================================
// REPORT LABELS
// =============================================================================

// Header is the header row of the main table, in column order.
var Header = []string{"NUMERO GARANZIA", "SUFFISSO", "JOB", "TOTALE JOB"}

const (
	// LabelGross labels the raw total row.
	LabelGross = "Totale"

	// LabelVATPrefix is followed by the percentage and "%", e.g. "IVA 22%".
	LabelVATPrefix = "IVA "

	// LabelTotalWithVAT labels the grand total row.
	LabelTotalWithVAT = "Totale IVA inclusa"
)
