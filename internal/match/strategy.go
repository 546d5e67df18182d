package match

// Strategy identifies one of the eight parameterised joins between scoring
// file and target. The three axes are: whether the scoring file line has an
// other allele, which target allele the effect allele is aligned to, and
// whether the scoring file alleles are strand-complemented first.
type Strategy uint8

const (
	StrategyRefAlt Strategy = iota
	StrategyAltRef
	StrategyRefAltFlip
	StrategyAltRefFlip
	StrategyNoOARef
	StrategyNoOAAlt
	StrategyNoOARefFlip
	StrategyNoOAAltFlip

	numStrategies
)

// strategySpec is one row of the dispatch table. altAligned means the effect
// allele joins against the target ALT column rather than REF.
type strategySpec struct {
	name          string
	flipped       bool
	noOtherAllele bool
	altAligned    bool
}

var strategyTable = [numStrategies]strategySpec{
	StrategyRefAlt:      {name: "refalt"},
	StrategyAltRef:      {name: "altref", altAligned: true},
	StrategyRefAltFlip:  {name: "refalt_flip", flipped: true},
	StrategyAltRefFlip:  {name: "altref_flip", flipped: true, altAligned: true},
	StrategyNoOARef:     {name: "no_oa_ref", noOtherAllele: true},
	StrategyNoOAAlt:     {name: "no_oa_alt", noOtherAllele: true, altAligned: true},
	StrategyNoOARefFlip: {name: "no_oa_ref_flip", noOtherAllele: true, flipped: true},
	StrategyNoOAAltFlip: {name: "no_oa_alt_flip", noOtherAllele: true, flipped: true, altAligned: true},
}

// String returns the strategy tag recorded in the match_type column.
func (s Strategy) String() string {
	if s >= numStrategies {
		return "invalid"
	}
	return strategyTable[s].name
}

// Flipped reports whether the strategy joins strand-complemented alleles.
func (s Strategy) Flipped() bool { return strategyTable[s].flipped }

// NoOtherAllele reports whether the strategy joins on the effect allele only.
func (s Strategy) NoOtherAllele() bool { return strategyTable[s].noOtherAllele }

// AltAligned reports whether the effect allele joined against target ALT.
func (s Strategy) AltAligned() bool { return strategyTable[s].altAligned }

// ParseStrategy maps a match_type tag back to its Strategy. Tags come from
// shard files written by earlier runs, so unknown tags are an error rather
// than a panic.
func ParseStrategy(tag string) (Strategy, error) {
	for s := Strategy(0); s < numStrategies; s++ {
		if strategyTable[s].name == tag {
			return s, nil
		}
	}
	return 0, &InvalidStrategyError{Tag: tag}
}
