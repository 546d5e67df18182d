package match

import "go.uber.org/zap"

// Combine concatenates candidate frames from chromosome-sharded matching
// runs into one frame. Batched runs over overlapping regions would match the
// same target variant twice, so global uniqueness of matched IDs is asserted
// before the union is postprocessed again (the duplicate flags and the best
// match selection are only meaningful over the whole dataset).
func (s *Session) Combine(shards [][]MatchCandidate) ([]MatchCandidate, error) {
	var combined []MatchCandidate
	for _, shard := range shards {
		combined = append(combined, shard...)
	}
	s.log.Debug("concatenated match shards",
		zap.Int("shards", len(shards)), zap.Int("candidates", len(combined)))

	nMatched := 0
	unique := make(map[string]bool)
	for i := range combined {
		if combined[i].Status != StatusMatched {
			continue
		}
		nMatched++
		unique[combined[i].ID] = true
	}
	if nMatched != len(unique) {
		return nil, &DuplicateIDError{NMatched: nMatched, NUnique: len(unique)}
	}

	// Shard-local flags are recomputed over the union.
	return s.Postprocess(combined), nil
}
