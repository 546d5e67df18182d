package match

import (
	"sort"

	"go.uber.org/zap"
)

// CheckCoverage computes the per-accession match rate and applies the
// min_overlap gate. The FilterSummary is always returned (the summary log
// needs score_pass even when the gate is disabled); a CoverageError is
// returned alongside it when any accession falls below the threshold.
//
// A scoring file with zero candidates fails with ErrNoMatches regardless of
// the threshold.
func (s *Session) CheckCoverage(scorefile []ScorefileRow, candidates []MatchCandidate) ([]FilterSummary, error) {
	if len(candidates) == 0 {
		return nil, ErrNoMatches
	}

	total := make(map[string]int)
	for i := range scorefile {
		total[scorefile[i].Accession]++
	}

	matched := make(map[string]map[int]bool)
	for i := range candidates {
		c := &candidates[i]
		if !c.BestMatch {
			continue
		}
		if matched[c.Accession] == nil {
			matched[c.Accession] = make(map[int]bool)
		}
		matched[c.Accession][c.RowNr] = true
	}

	accessions := make([]string, 0, len(total))
	for a := range total {
		accessions = append(accessions, a)
	}
	sort.Strings(accessions)

	summary := make([]FilterSummary, 0, len(accessions))
	var gateErr error
	for _, a := range accessions {
		rate := float64(len(matched[a])) / float64(total[a])
		pass := rate >= s.cfg.MinOverlap
		summary = append(summary, FilterSummary{Accession: a, ScorePass: pass, MatchRate: rate})

		if pass {
			s.log.Debug("score passes minimum matching threshold",
				zap.String("accession", a), zap.Float64("match_rate", rate))
			continue
		}
		s.log.Error("score fails minimum matching threshold",
			zap.String("accession", a), zap.Float64("match_rate", rate))
		if s.cfg.MinOverlap > 0 && gateErr == nil {
			gateErr = &CoverageError{Accession: a, Rate: rate}
		}
	}
	return summary, gateErr
}
