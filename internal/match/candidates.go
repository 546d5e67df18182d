package match

import (
	"sync"

	"go.uber.org/zap"
)

// pairKey joins on both alleles; a1/a2 map to target (REF, ALT).
type pairKey struct {
	chrom  symbolID
	pos    uint64
	a1, a2 symbolID
}

// singleKey joins on the effect allele against one target allele column.
type singleKey struct {
	chrom symbolID
	pos   uint64
	a     symbolID
}

// targetIndex holds hash indexes over a target frame, keyed by interned ids.
// Values are row offsets in insertion order, which keeps join output
// deterministic.
type targetIndex struct {
	pair map[pairKey][]int
	ref  map[singleKey][]int
	alt  map[singleKey][]int
}

// lookup returns the id for s without mutating the cache, so concurrent
// strategy workers can share the interner read-only. Strings never interned
// cannot equal any target key.
func (in *Interner) lookup(s string) (symbolID, bool) {
	id, ok := in.ids[s]
	return id, ok
}

func (s *Session) buildTargetIndex(target []TargetRow) *targetIndex {
	idx := &targetIndex{
		pair: make(map[pairKey][]int, len(target)),
		ref:  make(map[singleKey][]int, len(target)),
		alt:  make(map[singleKey][]int, len(target)),
	}
	for i := range target {
		chrom := s.interner.Intern(target[i].Chrom)
		ref := s.interner.Intern(target[i].Ref)
		alt := s.interner.Intern(target[i].Alt)
		pos := target[i].Pos

		pk := pairKey{chrom: chrom, pos: pos, a1: ref, a2: alt}
		idx.pair[pk] = append(idx.pair[pk], i)
		rk := singleKey{chrom: chrom, pos: pos, a: ref}
		idx.ref[rk] = append(idx.ref[rk], i)
		ak := singleKey{chrom: chrom, pos: pos, a: alt}
		idx.alt[ak] = append(idx.alt[ak], i)
	}
	return idx
}

// generateCandidates runs every enabled strategy join. Strategies execute on
// a bounded worker pool and results are collected into per-strategy slots,
// so the union order is the strategy table order regardless of scheduling.
func (s *Session) generateCandidates(scorefile []ScorefileRow, target []TargetRow) []MatchCandidate {
	idx := s.buildTargetIndex(target)

	var withOA, withoutOA []int
	for i := range scorefile {
		if scorefile[i].ChrPosition == nil {
			continue
		}
		if scorefile[i].HasOtherAllele() {
			withOA = append(withOA, i)
		} else {
			withoutOA = append(withoutOA, i)
		}
	}
	if len(withOA) > 0 {
		s.log.Debug("getting matches for scores with effect allele and other allele", zap.Int("rows", len(withOA)))
	}
	if len(withoutOA) > 0 {
		s.log.Debug("getting matches for scores with effect allele only", zap.Int("rows", len(withoutOA)))
	}

	var enabled []Strategy
	for st := Strategy(0); st < numStrategies; st++ {
		if st.Flipped() && s.cfg.SkipFlip {
			continue
		}
		if st.NoOtherAllele() {
			if len(withoutOA) > 0 {
				enabled = append(enabled, st)
			}
		} else if len(withOA) > 0 {
			enabled = append(enabled, st)
		}
	}

	results := make([][]MatchCandidate, numStrategies)
	sem := make(chan struct{}, s.cfg.NThreads)
	var wg sync.WaitGroup
	for _, st := range enabled {
		wg.Add(1)
		go func(st Strategy) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s.log.Debug("matching strategy", zap.String("match_type", st.String()))
			rows := withOA
			if st.NoOtherAllele() {
				rows = withoutOA
			}
			results[st] = s.matchStrategy(st, scorefile, rows, target, idx)
		}(st)
	}
	wg.Wait()

	var out []MatchCandidate
	for st := Strategy(0); st < numStrategies; st++ {
		out = append(out, results[st]...)
	}
	return out
}

// matchStrategy performs one inner equi-join between the scoring file
// partition and the target frame, tagging every produced row with the
// strategy.
func (s *Session) matchStrategy(st Strategy, scorefile []ScorefileRow, rows []int, target []TargetRow, idx *targetIndex) []MatchCandidate {
	var out []MatchCandidate
	for _, ri := range rows {
		row := &scorefile[ri]

		effect := row.EffectAllele
		if st.Flipped() {
			effect = row.EffectAlleleFlip
		}
		effectID, ok := s.interner.lookup(effect)
		if !ok {
			continue
		}
		chromID, ok := s.interner.lookup(row.ChrName)
		if !ok {
			continue
		}
		pos := *row.ChrPosition

		var hits []int
		if st.NoOtherAllele() {
			key := singleKey{chrom: chromID, pos: pos, a: effectID}
			if st.AltAligned() {
				hits = idx.alt[key]
			} else {
				hits = idx.ref[key]
			}
		} else {
			other := *row.OtherAllele
			if st.Flipped() {
				other = *row.OtherAlleleFlip
			}
			otherID, ok := s.interner.lookup(other)
			if !ok {
				continue
			}
			// refalt aligns (effect, other) to (REF, ALT); altref swaps.
			key := pairKey{chrom: chromID, pos: pos, a1: effectID, a2: otherID}
			if st.AltAligned() {
				key = pairKey{chrom: chromID, pos: pos, a1: otherID, a2: effectID}
			}
			hits = idx.pair[key]
		}

		for _, ti := range hits {
			out = append(out, MatchCandidate{
				ScorefileRow:        *row,
				ID:                  target[ti].ID,
				Ref:                 target[ti].Ref,
				Alt:                 target[ti].Alt,
				MatchedEffectAllele: effect,
				MatchType:           st,
				IsMultiallelic:      target[ti].IsMultiallelic,
			})
		}
	}
	return out
}
