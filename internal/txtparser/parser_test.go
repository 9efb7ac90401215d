package txtparser

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
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

func TestParseTextEndToEndExample(t *testing.T) {
	parsed, err := ParseText(sampleExport)
	require.NoError(t, err)

	assert.Equal(t, types.RecordSet{
		{GuaranteeNumber: "1234567", Suffix: "01", Job: 100, JobTotal: 500},
		{GuaranteeNumber: "1234567", Suffix: "02", Job: 50, JobTotal: -20},
	}, parsed.Records)
	assert.Equal(t, Stats{Matched: 3, Duplicates: 1, Coerced: 0}, parsed.Stats)
}

func TestParseTextNoValidRows(t *testing.T) {
	inputs := []string{
		"",
		"HEADER ONLY\nnothing to see here\n",
		"123456   01   100   500\n",   // six digits
		"12345678   01   100   500\n", // eight digits
		"1234567   01   100\n",        // missing total
	}

	for _, input := range inputs {
		_, err := ParseText(input)
		assert.ErrorIs(t, err, ErrNoValidRows, "input %q", input)
	}
}

func TestExtractRows(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []RawRow
	}{
		{
			name: "indented row with trailing columns",
			text: "    0012345  1  7  -15  EUR  note\n",
			want: []RawRow{{"0012345", "1", "7", "-15"}},
		},
		{
			name: "last line without terminator",
			text: "1234567 01 100 500",
			want: []RawRow{{"1234567", "01", "100", "500"}},
		},
		{
			name: "windows line endings",
			text: "1234567 01 100 500\r\n7654321 02 200 600\r\n",
			want: []RawRow{{"1234567", "01", "100", "500"}, {"7654321", "02", "200", "600"}},
		},
		{
			name: "punctuation after total is a boundary",
			text: "1234567 01 100 500.00\n",
			want: []RawRow{{"1234567", "01", "100", "500"}},
		},
		{
			name: "letter glued to total is not a boundary",
			text: "1234567 01 100 500x\n1234567 01 100 500à\n",
			want: []RawRow{},
		},
		{
			name: "row in the middle of a line is ignored",
			text: "TOTALE 1234567 01 100 500\n",
			want: []RawRow{},
		},
		{
			name: "non breaking spaces separate fields",
			text: "1234567\u00a001\u00a0\u00a0100 \u00a0500\n",
			want: []RawRow{{"1234567", "01", "100", "500"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRows(tt.text))
		})
	}
}

func TestFirstOccurrenceWins(t *testing.T) {
	parsed, err := ParseText("1234567 01 100 500\n1234567 01 100 999\n")
	require.NoError(t, err)

	require.Len(t, parsed.Records, 1)
	assert.Equal(t, int64(500), parsed.Records[0].JobTotal)
}

func TestDedupeUsesNumericJob(t *testing.T) {
	parsed, err := ParseText("1234567 01 050 1\n1234567 01 50 2\n")
	require.NoError(t, err)

	require.Len(t, parsed.Records, 1)
	assert.Equal(t, 50, parsed.Records[0].Job)
	assert.Equal(t, int64(1), parsed.Records[0].JobTotal)
}

func TestSortOrder(t *testing.T) {
	text := strings.Join([]string{
		"7654321 1 1 1",
		"1234567 2 10 1",
		"1234567 10 5 1",
		"1234567 2 9 1",
		"0000001 9 9 1",
	}, "\n")

	parsed, err := ParseText(text)
	require.NoError(t, err)

	var keys []types.Key
	for _, r := range parsed.Records {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []types.Key{
		{GuaranteeNumber: "0000001", Suffix: "9", Job: 9},
		{GuaranteeNumber: "1234567", Suffix: "10", Job: 5},
		{GuaranteeNumber: "1234567", Suffix: "2", Job: 9},
		{GuaranteeNumber: "1234567", Suffix: "2", Job: 10},
		{GuaranteeNumber: "7654321", Suffix: "1", Job: 1},
	}, keys)
}

func TestParseTextIsIdempotentAndSorted(t *testing.T) {
	text := sampleExport + "0000042 3 1 7\n0000042 3 1 8\n9999999 0 0 0\n"

	first, err := ParseText(text)
	require.NoError(t, err)
	second, err := ParseText(text)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	resorted := append(types.RecordSet(nil), first.Records...)
	Sort(resorted)
	assert.Equal(t, first.Records, resorted)

	for i := 1; i < len(first.Records); i++ {
		assert.True(t, first.Records[i-1].Less(first.Records[i]))
	}

	sevenDigits := regexp.MustCompile(`^\d{7}$`)
	for _, r := range first.Records {
		assert.Regexp(t, sevenDigits, r.GuaranteeNumber)
	}
}

func TestCoerceOutOfRangeBecomesZero(t *testing.T) {
	records, coerced := Coerce([]RawRow{
		{GuaranteeNumber: "1234567", Suffix: "01", Job: "99999999999999999999", JobTotal: "12"},
		{GuaranteeNumber: "1234567", Suffix: "02", Job: "3", JobTotal: "-99999999999999999999"},
	})

	assert.Equal(t, 2, coerced)
	assert.Equal(t, 0, records[0].Job)
	assert.Equal(t, int64(12), records[0].JobTotal)
	assert.Equal(t, 3, records[1].Job)
	assert.Equal(t, int64(0), records[1].JobTotal)
}

func TestDecode(t *testing.T) {
	latin1 := []byte{'c', 'a', 'u', 'z', 'i', 'o', 'n', 'e', ' ', 0xE0, 0xA0}
	text, err := Decode(latin1, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "cauzione \u00e0\u00a0", text)

	text, err = Decode([]byte{0x80}, "cp1252")
	require.NoError(t, err)
	assert.Equal(t, "€", text)

	_, err = Decode([]byte("x"), "UTF-16")
	assert.Error(t, err)
}

func TestConfiguredEncodingsDecode(t *testing.T) {
	names := []string{"ISO-8859-1", "latin-1", "Latin1", "WINDOWS-1252", "cp1252", "ISO-8859-15"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "riepilogo.yaml")
			require.NoError(t, os.WriteFile(path, []byte("input_encoding: "+name+"\n"), 0o644))

			cfg, err := config.LoadMainConfig(path)
			require.NoError(t, err)

			_, err = Decode([]byte("x"), cfg.Input().Encoding)
			assert.NoError(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	content := append([]byte("Societ\xe0 garanzie\n"), []byte("0000123\xa0\xa001   7   42\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	parsed, err := Parse(path, config.InputSettings{Encoding: "ISO-8859-1"})
	require.NoError(t, err)
	assert.Equal(t, types.RecordSet{{GuaranteeNumber: "0000123", Suffix: "01", Job: 7, JobTotal: 42}}, parsed.Records)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.txt"), config.InputSettings{})
	assert.Error(t, err)
}
