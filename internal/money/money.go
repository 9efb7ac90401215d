// =============================================================================
// Guarantee Summary Converter - Money Module
// =============================================================================
//
// Totals, VAT and the Italian currency notation used in the summary.
//
// ROUNDING:
//   All monetary rounding is half away from zero on 2 decimals, never
//   banker's rounding: 0.005 becomes 0.01 and -0.005 becomes -0.01.
//
// NOTATION:
//   1234.5 -> "1.234,50 €"   ("." groups thousands, "," separates decimals)
//
// =============================================================================

package money

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/guarantee-summary/internal/types"
	"github.com/shopspring/decimal"
)

// Places is the number of decimals of every formatted amount.
const Places = 2

// EuroSuffix follows every formatted amount.
const EuroSuffix = " €"

// ComputeTotals derives gross, VAT and grand total from records.
func ComputeTotals(records types.RecordSet, rate decimal.Decimal) types.Totals {
	gross := decimal.Zero
	for _, r := range records {
		gross = gross.Add(decimal.NewFromInt(r.JobTotal))
	}

	vat := gross.Mul(rate).Round(Places)

	return types.Totals{
		Gross:        gross,
		Rate:         rate,
		VAT:          vat,
		TotalWithVAT: gross.Add(vat),
	}
}

// FormatEUR renders an amount as "1.234,50 €".
func FormatEUR(amount decimal.Decimal) string {
	fixed := amount.Round(Places).StringFixed(Places)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	return sign + groupThousands(intPart) + "," + fracPart + EuroSuffix
}

// FormatInt renders a whole amount without grouping or currency, as printed
// in the job total column.
func FormatInt(amount int64) string {
	return strconv.FormatInt(amount, 10)
}

// FormatWhole renders the raw total row: the integer part, no grouping or
// currency.
func FormatWhole(amount decimal.Decimal) string {
	return amount.Truncate(0).String()
}

// FormatPercent renders a rate as a percentage number: 0.22 -> "22",
// 0.225 -> "22,5".
func FormatPercent(rate decimal.Decimal) string {
	return strings.Replace(rate.Shift(2).String(), ".", ",", 1)
}

// groupThousands inserts "." every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
