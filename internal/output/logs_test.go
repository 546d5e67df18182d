package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ens-lgil/pgscatalog-utils/internal/match"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func u64Ptr(v uint64) *uint64 { return &v }

func TestRawLogWriter(t *testing.T) {
	mt := match.StrategyRefAlt
	rows := []match.LogRow{
		{
			Dataset:             "cohort",
			RowNr:               1,
			Accession:           "PGS001",
			ChrName:             "1",
			ChrPosition:         u64Ptr(100),
			EffectAllele:        "A",
			OtherAllele:         strPtr("G"),
			EffectWeight:        "0.5",
			EffectType:          match.EffectAdditive,
			ID:                  strPtr("rs1"),
			Ref:                 strPtr("A"),
			Alt:                 strPtr("G"),
			MatchedEffectAllele: strPtr("A"),
			MatchType:           &mt,
			IsMultiallelic:      boolPtr(false),
			Ambiguous:           boolPtr(false),
			MatchFlipped:        boolPtr(false),
			DuplicateBestMatch:  boolPtr(false),
			DuplicateID:         boolPtr(false),
			Status:              match.StatusMatched,
		},
		{
			Dataset:      "cohort",
			RowNr:        2,
			Accession:    "PGS001",
			ChrName:      "1",
			EffectAllele: "C",
			EffectWeight: "0.2",
			EffectType:   match.EffectAdditive,
			Status:       match.StatusUnmatched,
		},
	}

	var buf bytes.Buffer
	w := NewRawLogWriter(&buf)
	require.NoError(t, w.WriteHeader())
	for i := range rows {
		require.NoError(t, w.Write(&rows[i]))
	}
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	header := strings.Split(lines[0], "\t")
	assert.Equal(t, "row_nr", header[0])
	assert.Equal(t, "dataset", header[len(header)-1])

	matched := strings.Split(lines[1], "\t")
	require.Len(t, matched, len(header))
	assert.Equal(t, "1", matched[0])
	assert.Equal(t, "rs1", matched[8])
	assert.Equal(t, "refalt", matched[12])
	assert.Equal(t, "matched", matched[17])

	unmatched := strings.Split(lines[2], "\t")
	require.Len(t, unmatched, len(header))
	assert.Equal(t, "", unmatched[3], "null position renders empty")
	assert.Equal(t, "", unmatched[8], "no target ID")
	assert.Equal(t, "", unmatched[12], "no match type")
	assert.Equal(t, "unmatched", unmatched[17])
}

func TestSummaryLogWriter(t *testing.T) {
	rows := []match.SummaryRow{
		{
			Dataset:            "cohort",
			Accession:          "PGS001",
			ScorePass:          true,
			Status:             match.StatusMatched,
			Ambiguous:          boolPtr(false),
			IsMultiallelic:     boolPtr(false),
			MatchFlipped:       boolPtr(false),
			DuplicateBestMatch: boolPtr(false),
			DuplicateID:        boolPtr(false),
			Count:              3,
			Percent:            75,
		},
		{
			Dataset:   "cohort",
			Accession: "PGS001",
			ScorePass: true,
			Status:    match.StatusUnmatched,
			Count:     1,
			Percent:   25,
		},
	}

	var buf bytes.Buffer
	w := NewSummaryLogWriter(&buf)
	require.NoError(t, w.WriteHeader())
	for i := range rows {
		require.NoError(t, w.Write(&rows[i]))
	}
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	matched := strings.Split(lines[1], "\t")
	assert.Equal(t, []string{"cohort", "PGS001", "true", "matched", "false", "false", "false", "false", "3", "75.00000"}, matched)

	unmatched := strings.Split(lines[2], "\t")
	assert.Equal(t, []string{"cohort", "PGS001", "true", "unmatched", "", "", "", "", "1", "25.00000"}, unmatched)
}
