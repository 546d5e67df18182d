package match

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// LogRow is one line of the raw (per-candidate) log: the full outer join of
// the scoring file with every match candidate. Candidate-side fields are nil
// for unmatched scoring file lines.
type LogRow struct {
	Dataset      string
	RowNr        int
	Accession    string
	ChrName      string
	ChrPosition  *uint64
	EffectAllele string
	OtherAllele  *string
	EffectWeight string
	EffectType   EffectType

	ID                  *string
	Ref                 *string
	Alt                 *string
	MatchedEffectAllele *string
	MatchType           *Strategy
	IsMultiallelic      *bool
	Ambiguous           *bool
	MatchFlipped        *bool
	DuplicateBestMatch  *bool
	DuplicateID         *bool

	Status MatchStatus
}

// SummaryRow is one line of the aggregated per-accession log. Flag columns
// are nil on unmatched groups (no candidate to read them from).
type SummaryRow struct {
	Dataset            string
	Accession          string
	ScorePass          bool
	Status             MatchStatus
	Ambiguous          *bool
	IsMultiallelic     *bool
	MatchFlipped       *bool
	DuplicateBestMatch *bool
	DuplicateID        *bool
	Count              int
	Percent            float64
}

// AssembleRawLog joins the scoring file with the full candidate set on
// (row_nr, accession). Lines with no candidate get a synthetic unmatched
// row, so every scoring file line appears at least once.
func (s *Session) AssembleRawLog(scorefile []ScorefileRow, candidates []MatchCandidate) []LogRow {
	byRow := make(map[groupKey][]int)
	for i := range candidates {
		k := groupKey{accession: candidates[i].Accession, rowNr: candidates[i].RowNr}
		byRow[k] = append(byRow[k], i)
	}

	out := make([]LogRow, 0, len(scorefile)+len(candidates))
	for i := range scorefile {
		row := &scorefile[i]
		k := groupKey{accession: row.Accession, rowNr: row.RowNr}
		members, ok := byRow[k]
		if !ok {
			out = append(out, LogRow{
				Dataset:      s.cfg.Dataset,
				RowNr:        row.RowNr,
				Accession:    row.Accession,
				ChrName:      row.ChrName,
				ChrPosition:  row.ChrPosition,
				EffectAllele: row.EffectAllele,
				OtherAllele:  row.OtherAllele,
				EffectWeight: row.EffectWeight,
				EffectType:   row.EffectType,
				Status:       StatusUnmatched,
			})
			continue
		}
		for _, ci := range members {
			c := &candidates[ci]
			mt := c.MatchType
			out = append(out, LogRow{
				Dataset:             s.cfg.Dataset,
				RowNr:               row.RowNr,
				Accession:           row.Accession,
				ChrName:             row.ChrName,
				ChrPosition:         row.ChrPosition,
				EffectAllele:        row.EffectAllele,
				OtherAllele:         row.OtherAllele,
				EffectWeight:        row.EffectWeight,
				EffectType:          row.EffectType,
				ID:                  ptr(c.ID),
				Ref:                 ptr(c.Ref),
				Alt:                 ptr(c.Alt),
				MatchedEffectAllele: ptr(c.MatchedEffectAllele),
				MatchType:           &mt,
				IsMultiallelic:      ptr(c.IsMultiallelic),
				Ambiguous:           ptr(c.Ambiguous),
				MatchFlipped:        ptr(c.MatchFlipped),
				DuplicateBestMatch:  ptr(c.DuplicateBestMatch),
				DuplicateID:         ptr(c.DuplicateID),
				Status:              c.Status,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Accession != b.Accession {
			return a.Accession < b.Accession
		}
		if a.RowNr != b.RowNr {
			return a.RowNr < b.RowNr
		}
		if a.ChrName != b.ChrName {
			return a.ChrName < b.ChrName
		}
		ap, bp := uint64(0), uint64(0)
		if a.ChrPosition != nil {
			ap = *a.ChrPosition
		}
		if b.ChrPosition != nil {
			bp = *b.ChrPosition
		}
		if ap != bp {
			return ap < bp
		}
		return a.Status < b.Status
	})
	return out
}

func ptr[T any](v T) *T { return &v }

// summaryKey groups best-match outcomes for aggregation.
type summaryKey struct {
	accession string
	status    MatchStatus
	// Flag fields use a three-state encoding: -1 null, 0 false, 1 true.
	ambiguous          int8
	isMultiallelic     int8
	matchFlipped       int8
	duplicateBestMatch int8
	duplicateID        int8
}

func boolState(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func statePtr(v int8) *bool {
	switch v {
	case 1:
		return ptr(true)
	case 0:
		return ptr(false)
	default:
		return nil
	}
}

// AssembleSummaryLog joins the scoring file with the best_match candidates,
// aggregates counts over the log flag columns, attaches the coverage gate
// outcome and adds per-accession percentages. The aggregated counts are
// cross-checked against the scoring file line counts; a mismatch is a fatal
// internal error.
func (s *Session) AssembleSummaryLog(scorefile []ScorefileRow, candidates []MatchCandidate, filterSummary []FilterSummary) ([]SummaryRow, error) {
	best := make(map[groupKey]int)
	for i := range candidates {
		if !candidates[i].BestMatch {
			continue
		}
		best[groupKey{accession: candidates[i].Accession, rowNr: candidates[i].RowNr}] = i
	}

	counts := make(map[summaryKey]int)
	var order []summaryKey
	for i := range scorefile {
		row := &scorefile[i]
		k := summaryKey{
			accession:          row.Accession,
			status:             StatusUnmatched,
			ambiguous:          -1,
			isMultiallelic:     -1,
			matchFlipped:       -1,
			duplicateBestMatch: -1,
			duplicateID:        -1,
		}
		if ci, ok := best[groupKey{accession: row.Accession, rowNr: row.RowNr}]; ok {
			c := &candidates[ci]
			k = summaryKey{
				accession:          row.Accession,
				status:             c.Status,
				ambiguous:          boolState(c.Ambiguous),
				isMultiallelic:     boolState(c.IsMultiallelic),
				matchFlipped:       boolState(c.MatchFlipped),
				duplicateBestMatch: boolState(c.DuplicateBestMatch),
				duplicateID:        boolState(c.DuplicateID),
			}
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	scorePass := make(map[string]bool, len(filterSummary))
	for _, f := range filterSummary {
		scorePass[f.Accession] = f.ScorePass
	}

	accessionTotal := make(map[string]int)
	for _, k := range order {
		accessionTotal[k.accession] += counts[k]
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.accession != b.accession {
			return a.accession < b.accession
		}
		if a.status != b.status {
			return a.status < b.status
		}
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return false
	})

	out := make([]SummaryRow, 0, len(order))
	for _, k := range order {
		out = append(out, SummaryRow{
			Dataset:            s.cfg.Dataset,
			Accession:          k.accession,
			ScorePass:          scorePass[k.accession],
			Status:             k.status,
			Ambiguous:          statePtr(k.ambiguous),
			IsMultiallelic:     statePtr(k.isMultiallelic),
			MatchFlipped:       statePtr(k.matchFlipped),
			DuplicateBestMatch: statePtr(k.duplicateBestMatch),
			DuplicateID:        statePtr(k.duplicateID),
			Count:              counts[k],
			Percent:            float64(counts[k]) / float64(accessionTotal[k.accession]) * 100,
		})
	}

	// The aggregated counts must add back up to the scoring file.
	scorefileTotal := make(map[string]int)
	for i := range scorefile {
		scorefileTotal[scorefile[i].Accession]++
	}
	for a, n := range scorefileTotal {
		if accessionTotal[a] != n {
			return nil, fmt.Errorf("%w: accession %s has %d summary rows for %d scorefile rows",
				ErrInternalConsistency, a, accessionTotal[a], n)
		}
	}
	s.log.Debug("summary log matches input scoring file", zap.Int("rows", len(out)))
	return out, nil
}
