package match

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func asError[T error](err error, target *T) bool {
	return errors.As(err, target)
}

func testSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.Dataset == "" {
		cfg.Dataset = "test"
	}
	if cfg.NThreads == 0 {
		cfg.NThreads = 1
	}
	s, err := NewSession(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// srow builds a scoring file row; other == "" means missing other allele.
func srow(rowNr int, accession, chr string, pos uint64, effect, other, weight string) ScorefileRow {
	r := ScorefileRow{
		RowNr:        rowNr,
		Accession:    accession,
		ChrName:      chr,
		ChrPosition:  &pos,
		EffectAllele: effect,
		EffectWeight: weight,
		EffectType:   EffectAdditive,
	}
	if other != "" {
		r.OtherAllele = &other
	}
	return r
}

func trow(chrom string, pos uint64, id, ref, alt string) TargetRow {
	return TargetRow{Chrom: chrom, Pos: pos, ID: id, Ref: ref, Alt: alt}
}

// prepare runs the scorefile preprocessing every pipeline entry point needs.
func prepare(t *testing.T, s *Session, rows []ScorefileRow) []ScorefileRow {
	t.Helper()
	if err := s.PrepareScorefile(rows); err != nil {
		t.Fatalf("PrepareScorefile: %v", err)
	}
	return rows
}
