// Package match implements the polygenic score variant-matching engine:
// joining harmonized scoring files against target genotype variant tables,
// selecting one best match per scoring file line, gating on per-score
// coverage and assembling the match logs.
package match

import "fmt"

// EffectType describes how a variant's effect weight is applied.
type EffectType string

const (
	EffectAdditive  EffectType = "additive"
	EffectDominant  EffectType = "dominant"
	EffectRecessive EffectType = "recessive"
)

// MatchStatus classifies a candidate (or the absence of one) in the logs.
type MatchStatus string

const (
	// StatusMatched marks the best candidate for a scoring file line.
	StatusMatched MatchStatus = "matched"
	// StatusNotBest marks candidates that lost best-match selection.
	StatusNotBest MatchStatus = "not_best"
	// StatusExcluded marks candidates dropped from matching (ambiguous + flipped).
	StatusExcluded MatchStatus = "excluded"
	// StatusUnmatched is synthesized for scoring file lines with no candidate.
	StatusUnmatched MatchStatus = "unmatched"
)

// ScorefileRow is one line of a combined scoring file. Row identity is RowNr,
// assigned in file order. ChrPosition and OtherAllele are nil when the input
// field is empty; rows without a position never generate candidates but must
// survive to the logs.
type ScorefileRow struct {
	RowNr        int
	Accession    string
	ChrName      string
	ChrPosition  *uint64
	EffectAllele string
	OtherAllele  *string
	EffectWeight string
	EffectType   EffectType

	// Strand complements, filled by ComplementValidAlleles. Equal to the
	// original allele when it is not a plain DNA sequence.
	EffectAlleleFlip string
	OtherAlleleFlip  *string
}

// HasOtherAllele reports whether the line records both alleles.
func (r *ScorefileRow) HasOtherAllele() bool {
	return r.OtherAllele != nil
}

// TargetRow is one variant from a target genotype variant table (bim or pvar).
// After preprocessing Alt holds a single allele; multiallelic pvar rows are
// either exploded into one TargetRow per alternate allele or removed.
type TargetRow struct {
	Chrom          string
	Pos            uint64
	ID             string
	Ref            string
	Alt            string
	IsMultiallelic bool
}

// MatchCandidate links a scoring file line to a target variant produced by
// one match strategy, plus the flags annotated during postprocessing.
type MatchCandidate struct {
	ScorefileRow

	ID                  string
	Ref                 string
	Alt                 string
	MatchedEffectAllele string
	MatchType           Strategy
	IsMultiallelic      bool

	Ambiguous          bool
	MatchFlipped       bool
	DuplicateBestMatch bool
	DuplicateID        bool
	BestMatch          bool
	Exclude            bool
	Status             MatchStatus
}

// FilterSummary is the per-accession outcome of the coverage gate.
type FilterSummary struct {
	Accession string
	ScorePass bool
	MatchRate float64
}

// String implements fmt.Stringer for log output.
func (f FilterSummary) String() string {
	return fmt.Sprintf("%s pass=%t rate=%.4f", f.Accession, f.ScorePass, f.MatchRate)
}
