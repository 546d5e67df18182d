package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPalindromic(t *testing.T) {
	g := "G"
	tT := "T"
	a := "A"
	c := "C"
	tests := []struct {
		name   string
		effect string
		other  *string
		want   bool
	}{
		{"A/T", "A", &tT, true},
		{"T/A", "T", &a, true},
		{"C/G", "C", &g, true},
		{"G/C", "G", &c, true},
		{"A/G", "A", &g, false},
		{"A/C", "A", &c, false},
		{"missing other", "A", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPalindromic(tt.effect, tt.other))
		})
	}
}

// Palindromic variant with flip candidates: flipped matches are dropped,
// the non-flipped match survives flagged ambiguous.
func TestPostprocessAmbiguousFlipDropped(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 300, "A", "T", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 300, "rs3", "A", "T"),
		trow("1", 300, "rs3b", "T", "A"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 4)

	var best *MatchCandidate
	nExcluded := 0
	for i := range candidates {
		c := &candidates[i]
		assert.True(t, c.Ambiguous, "all candidates of a palindromic pair are ambiguous")
		if c.MatchFlipped {
			assert.True(t, c.Exclude)
			assert.Equal(t, StatusExcluded, c.Status)
			assert.False(t, c.BestMatch)
			nExcluded++
		}
		if c.BestMatch {
			best = c
		}
	}
	assert.Equal(t, 2, nExcluded)
	require.NotNil(t, best)
	assert.Equal(t, StrategyRefAlt, best.MatchType)
	assert.Equal(t, "rs3", best.ID)
	assert.Equal(t, StatusMatched, best.Status)
}

// keep_ambiguous retains flipped palindromic candidates.
func TestPostprocessKeepAmbiguous(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemoveAmbiguous = false
	s := testSession(t, cfg)
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 300, "A", "T", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 300, "rs3", "A", "T"),
		trow("1", 300, "rs3b", "T", "A"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 4)
	for i := range candidates {
		assert.False(t, candidates[i].Exclude)
		assert.NotEqual(t, StatusExcluded, candidates[i].Status)
	}
}

// REF-aligned effect alleles beat ALT-aligned ones.
func TestPostprocessRefAlignedWins(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 100, "rs1", "A", "G"),
		trow("1", 100, "rs1b", "G", "A"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 2)

	byType := map[Strategy]*MatchCandidate{}
	for i := range candidates {
		byType[candidates[i].MatchType] = &candidates[i]
	}
	require.Contains(t, byType, StrategyRefAlt)
	require.Contains(t, byType, StrategyAltRef)
	assert.True(t, byType[StrategyRefAlt].BestMatch)
	assert.False(t, byType[StrategyAltRef].BestMatch)
	assert.Equal(t, StatusNotBest, byType[StrategyAltRef].Status)
}

// Non-flipped candidates beat flipped ones.
func TestPostprocessNonFlippedWins(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 100, "rs1", "A", "G"),
		trow("1", 100, "rs1f", "T", "C"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 2)
	for i := range candidates {
		c := &candidates[i]
		if c.MatchType == StrategyRefAlt {
			assert.True(t, c.BestMatch)
		} else {
			assert.Equal(t, StrategyRefAltFlip, c.MatchType)
			assert.False(t, c.BestMatch)
		}
	}
}

// Non-multiallelic candidates beat multiallelic ones.
func TestPostprocessMultiallelicTieBreak(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 100, "rs1", "A", "G,C"),
		trow("1", 100, "rs2", "A", "C"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 3)

	nBest := 0
	for i := range candidates {
		c := &candidates[i]
		if c.BestMatch {
			nBest++
			assert.Equal(t, "rs2", c.ID)
			assert.False(t, c.IsMultiallelic)
		}
	}
	assert.Equal(t, 1, nBest)
}

// Identical priority resolves by target ID and surfaces duplicate_best_match.
func TestPostprocessDuplicateBestMatch(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "", "0.5"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 100, "rs9", "A", "G"),
		trow("1", 100, "rs1", "A", "C"),
	}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 2)

	var best *MatchCandidate
	for i := range candidates {
		c := &candidates[i]
		assert.True(t, c.DuplicateBestMatch)
		if c.BestMatch {
			best = c
		}
	}
	require.NotNil(t, best)
	assert.Equal(t, "rs1", best.ID, "lexicographic ID tie-break")
}

// The same target variant claimed by two scoring file lines is flagged.
func TestPostprocessDuplicateID(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
		srow(2, "PGS001", "1", 100, "G", "A", "0.3"),
	})
	target := s.PrepareTarget([]TargetRow{trow("1", 100, "rs1", "A", "G")}, true)

	candidates := s.Match(scorefile, target)
	require.Len(t, candidates, 2)
	for i := range candidates {
		assert.True(t, candidates[i].DuplicateID)
		assert.True(t, candidates[i].BestMatch, "each line still gets its own best match")
	}
}

// At most one best match per scoring file line.
func TestPostprocessSingleBestPerLine(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
		srow(2, "PGS001", "1", 200, "C", "T", "0.2"),
	})
	target := s.PrepareTarget([]TargetRow{
		trow("1", 100, "rs1", "A", "G"),
		trow("1", 100, "rs1b", "G", "A"),
		trow("1", 200, "rs2", "C", "T"),
		trow("1", 200, "rs2b", "T", "C"),
	}, true)

	candidates := s.Match(scorefile, target)
	counts := map[int]int{}
	for i := range candidates {
		if candidates[i].BestMatch {
			counts[candidates[i].RowNr]++
		}
	}
	for rowNr, n := range counts {
		assert.Equal(t, 1, n, "row %d", rowNr)
	}
	assert.Len(t, counts, 2)
}
