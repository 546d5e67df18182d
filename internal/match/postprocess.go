package match

import "go.uber.org/zap"

// IsPalindromic reports whether an allele pair is strand-ambiguous: {A,T} or
// {C,G}. A missing other allele can never be palindromic.
func IsPalindromic(effectAllele string, otherAllele *string) bool {
	if otherAllele == nil {
		return false
	}
	a, b := effectAllele, *otherAllele
	return (a == "A" && b == "T") || (a == "T" && b == "A") ||
		(a == "C" && b == "G") || (a == "G" && b == "C")
}

// groupKey identifies the candidates competing for one scoring file line.
type groupKey struct {
	accession string
	rowNr     int
}

// candidateRank is the best-match priority vector. Lower is better, compared
// field by field; the final tie-break is the lexicographic target ID.
type candidateRank struct {
	flipped       int
	noOtherAllele int
	altAligned    int
	ambiguous     int
	multiallelic  int
}

func rankOf(c *MatchCandidate) candidateRank {
	r := candidateRank{}
	if c.MatchType.Flipped() {
		r.flipped = 1
	}
	if c.MatchType.NoOtherAllele() {
		r.noOtherAllele = 1
	}
	if c.MatchType.AltAligned() {
		r.altAligned = 1
	}
	if c.Ambiguous {
		r.ambiguous = 1
	}
	if c.IsMultiallelic {
		r.multiallelic = 1
	}
	return r
}

func (r candidateRank) less(o candidateRank) bool {
	if r.flipped != o.flipped {
		return r.flipped < o.flipped
	}
	if r.noOtherAllele != o.noOtherAllele {
		return r.noOtherAllele < o.noOtherAllele
	}
	if r.altAligned != o.altAligned {
		return r.altAligned < o.altAligned
	}
	if r.ambiguous != o.ambiguous {
		return r.ambiguous < o.ambiguous
	}
	return r.multiallelic < o.multiallelic
}

// Postprocess annotates the union of strategy outputs and selects one best
// candidate per scoring file line:
//
//  1. palindromic ambiguity
//  2. strand-flip status
//  3. exclusion of irrecoverable candidates (ambiguous + flipped) when
//     configured; ambiguous non-flipped candidates stay, flagged
//  4. duplicate target IDs within an accession
//  5. best-match selection by priority, deterministic ID tie-break
//  6. duplicate_best_match where the priority alone could not decide
//  7. match status
func (s *Session) Postprocess(candidates []MatchCandidate) []MatchCandidate {
	for i := range candidates {
		c := &candidates[i]
		c.Ambiguous = IsPalindromic(c.EffectAllele, c.OtherAllele)
		c.MatchFlipped = c.MatchType.Flipped()
		c.Exclude = s.cfg.RemoveAmbiguous && c.Ambiguous && c.MatchFlipped
		c.DuplicateID = false
		c.DuplicateBestMatch = false
		c.BestMatch = false
	}

	// Duplicate target IDs: the same target variant claimed by more than one
	// scoring file line of an accession. Excluded candidates don't count.
	type idKey struct {
		accession, id string
	}
	idRows := make(map[idKey]map[int]bool)
	for i := range candidates {
		c := &candidates[i]
		if c.Exclude {
			continue
		}
		k := idKey{accession: c.Accession, id: c.ID}
		if idRows[k] == nil {
			idRows[k] = make(map[int]bool)
		}
		idRows[k][c.RowNr] = true
	}
	for i := range candidates {
		c := &candidates[i]
		if c.Exclude {
			continue
		}
		if len(idRows[idKey{accession: c.Accession, id: c.ID}]) > 1 {
			c.DuplicateID = true
		}
	}

	// Best-match selection per (accession, row_nr).
	groups := make(map[groupKey][]int)
	var order []groupKey
	for i := range candidates {
		if candidates[i].Exclude {
			continue
		}
		k := groupKey{accession: candidates[i].Accession, rowNr: candidates[i].RowNr}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	nDuplicateBest := 0
	for _, k := range order {
		members := groups[k]
		best := members[0]
		bestRank := rankOf(&candidates[best])
		for _, i := range members[1:] {
			r := rankOf(&candidates[i])
			if r.less(bestRank) || (!bestRank.less(r) && candidates[i].ID < candidates[best].ID) {
				best, bestRank = i, r
			}
		}

		// More than one candidate at the top priority means the ID tie-break
		// decided arbitrarily; surface that.
		topCount := 0
		for _, i := range members {
			r := rankOf(&candidates[i])
			if !bestRank.less(r) && !r.less(bestRank) {
				topCount++
			}
		}
		if topCount > 1 {
			nDuplicateBest++
			for _, i := range members {
				candidates[i].DuplicateBestMatch = true
			}
		}
		candidates[best].BestMatch = true
	}

	for i := range candidates {
		c := &candidates[i]
		switch {
		case c.Exclude:
			c.Status = StatusExcluded
		case c.BestMatch:
			c.Status = StatusMatched
		default:
			c.Status = StatusNotBest
		}
	}

	s.log.Debug("postprocessed match candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("scorefile_rows_matched", len(order)),
		zap.Int("duplicate_best_matches", nDuplicateBest))
	return candidates
}
