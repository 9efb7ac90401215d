package txtparser

import (
	"sort"
	"strconv"

	"github.com/ginjaninja78/guarantee-summary/internal/types"
)

// Coerce converts raw rows into records, in the same order.
//
// Job and job total are parsed as integers. A field that cannot be parsed
// (in practice only an out-of-range value) becomes 0 and the row is kept;
// the second return value counts such fields.
func Coerce(rows []RawRow) ([]types.Record, int) {
	records := make([]types.Record, len(rows))
	coerced := 0

	for i, row := range rows {
		job, err := strconv.Atoi(row.Job)
		if err != nil {
			job = 0
			coerced++
		}

		total, err := strconv.ParseInt(row.JobTotal, 10, 64)
		if err != nil {
			total = 0
			coerced++
		}

		records[i] = types.Record{
			GuaranteeNumber: row.GuaranteeNumber,
			Suffix:          row.Suffix,
			Job:             job,
			JobTotal:        total,
		}
	}

	return records, coerced
}

// Dedupe drops records whose key was already seen. The first occurrence in
// input order is kept. The input slice is not modified.
func Dedupe(records []types.Record) types.RecordSet {
	seen := make(map[types.Key]struct{}, len(records))
	unique := make(types.RecordSet, 0, len(records))

	for _, r := range records {
		key := r.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	return unique
}

// Sort orders records in place by guarantee number, suffix and job.
func Sort(records types.RecordSet) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Less(records[j])
	})
}
