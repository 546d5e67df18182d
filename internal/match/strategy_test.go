package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyTags(t *testing.T) {
	want := map[Strategy]string{
		StrategyRefAlt:      "refalt",
		StrategyAltRef:      "altref",
		StrategyRefAltFlip:  "refalt_flip",
		StrategyAltRefFlip:  "altref_flip",
		StrategyNoOARef:     "no_oa_ref",
		StrategyNoOAAlt:     "no_oa_alt",
		StrategyNoOARefFlip: "no_oa_ref_flip",
		StrategyNoOAAltFlip: "no_oa_alt_flip",
	}
	for st, tag := range want {
		assert.Equal(t, tag, st.String())
	}
}

func TestParseStrategyRoundTrip(t *testing.T) {
	for st := Strategy(0); st < numStrategies; st++ {
		parsed, err := ParseStrategy(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}
}

func TestParseStrategyUnknown(t *testing.T) {
	_, err := ParseStrategy("sideways")
	require.Error(t, err)
	var invalid *InvalidStrategyError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "sideways", invalid.Tag)
}

func TestStrategyAxes(t *testing.T) {
	tests := []struct {
		st            Strategy
		flipped       bool
		noOtherAllele bool
		altAligned    bool
	}{
		{StrategyRefAlt, false, false, false},
		{StrategyAltRef, false, false, true},
		{StrategyRefAltFlip, true, false, false},
		{StrategyAltRefFlip, true, false, true},
		{StrategyNoOARef, false, true, false},
		{StrategyNoOAAlt, false, true, true},
		{StrategyNoOARefFlip, true, true, false},
		{StrategyNoOAAltFlip, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.st.String(), func(t *testing.T) {
			assert.Equal(t, tt.flipped, tt.st.Flipped())
			assert.Equal(t, tt.noOtherAllele, tt.st.NoOtherAllele())
			assert.Equal(t, tt.altAligned, tt.st.AltAligned())
		})
	}
}
