package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two shards reporting the same matched target ID fail the combiner.
func TestCombineDuplicateIDAcrossShards(t *testing.T) {
	s := testSession(t, DefaultConfig())

	mk := func() MatchCandidate {
		c := MatchCandidate{
			ScorefileRow:        srow(7, "PGS003", "1", 100, "A", "G", "0.5"),
			ID:                  "rs42",
			Ref:                 "A",
			Alt:                 "G",
			MatchedEffectAllele: "A",
			MatchType:           StrategyRefAlt,
			BestMatch:           true,
			Status:              StatusMatched,
		}
		return c
	}

	_, err := s.Combine([][]MatchCandidate{{mk()}, {mk()}})
	require.Error(t, err)
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, dup.NMatched)
	assert.Equal(t, 1, dup.NUnique)
}

// Disjoint chromosome shards combine cleanly and keep their best matches.
func TestCombineDisjointShards(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
		srow(2, "PGS001", "2", 200, "C", "T", "0.2"),
	})

	shard1 := s.Match(scorefile, s.PrepareTarget([]TargetRow{trow("1", 100, "rs1", "A", "G")}, true))
	shard2 := s.Match(scorefile, s.PrepareTarget([]TargetRow{trow("2", 200, "rs2", "C", "T")}, true))

	combined, err := s.Combine([][]MatchCandidate{shard1, shard2})
	require.NoError(t, err)
	require.Len(t, combined, 2)

	ids := map[string]bool{}
	for i := range combined {
		assert.True(t, combined[i].BestMatch)
		assert.Equal(t, StatusMatched, combined[i].Status)
		ids[combined[i].ID] = true
	}
	assert.Len(t, ids, 2)
}

// The same target matched by different scoring file lines in different
// shard runs is only visible globally; the uniqueness assertion catches it.
func TestCombineCrossShardSameTarget(t *testing.T) {
	s := testSession(t, DefaultConfig())
	scorefile := prepare(t, s, []ScorefileRow{
		srow(1, "PGS001", "1", 100, "A", "G", "0.5"),
		srow(2, "PGS001", "1", 100, "G", "A", "0.3"),
	})
	target := s.PrepareTarget([]TargetRow{trow("1", 100, "rs1", "A", "G")}, true)

	// Each line matched in isolation: no duplicate visible per shard.
	shard1 := s.Match(scorefile[:1], target)
	shard2 := s.Match(scorefile[1:], target)
	require.False(t, shard1[0].DuplicateID)
	require.False(t, shard2[0].DuplicateID)

	_, err := s.Combine([][]MatchCandidate{shard1, shard2})
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
}
