package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ens-lgil/pgscatalog-utils/internal/match"
)

// WriteCandidates batch-inserts a candidate frame using the Appender API.
func (s *Store) WriteCandidates(candidates []match.MatchCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "match_candidates")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := range candidates {
		c := &candidates[i]

		var chrPosition any
		if c.ChrPosition != nil {
			chrPosition = int64(*c.ChrPosition)
		}
		var otherAllele any
		if c.OtherAllele != nil {
			otherAllele = *c.OtherAllele
		}

		if err := appender.AppendRow(
			int64(c.RowNr), c.Accession, c.ChrName, chrPosition,
			c.EffectAllele, otherAllele, c.EffectWeight, string(c.EffectType),
			c.ID, c.Ref, c.Alt, c.MatchedEffectAllele, c.MatchType.String(),
			c.IsMultiallelic, c.Ambiguous, c.MatchFlipped,
			c.DuplicateBestMatch, c.DuplicateID, c.BestMatch,
			c.Exclude, string(c.Status),
		); err != nil {
			return fmt.Errorf("append match candidate: %w", err)
		}
	}

	return appender.Flush()
}

// LoadCandidates scans the candidate frame back in a deterministic order.
func (s *Store) LoadCandidates() ([]match.MatchCandidate, error) {
	rows, err := s.db.Query(`SELECT
		row_nr, accession, chr_name, chr_position,
		effect_allele, other_allele, effect_weight, effect_type,
		variant_id, ref, alt, matched_effect_allele, match_type,
		is_multiallelic, ambiguous, match_flipped,
		duplicate_best_match, duplicate_id, best_match,
		exclude, match_status
		FROM match_candidates
		ORDER BY accession, row_nr, match_type, variant_id`)
	if err != nil {
		return nil, fmt.Errorf("query match candidates: %w", err)
	}
	defer rows.Close()

	var candidates []match.MatchCandidate
	for rows.Next() {
		var (
			c           match.MatchCandidate
			rowNr       int64
			chrPosition sql.NullInt64
			otherAllele sql.NullString
			effectType  string
			matchType   string
			status      string
		)
		if err := rows.Scan(
			&rowNr, &c.Accession, &c.ChrName, &chrPosition,
			&c.EffectAllele, &otherAllele, &c.EffectWeight, &effectType,
			&c.ID, &c.Ref, &c.Alt, &c.MatchedEffectAllele, &matchType,
			&c.IsMultiallelic, &c.Ambiguous, &c.MatchFlipped,
			&c.DuplicateBestMatch, &c.DuplicateID, &c.BestMatch,
			&c.Exclude, &status,
		); err != nil {
			return nil, fmt.Errorf("scan match candidate: %w", err)
		}

		c.RowNr = int(rowNr)
		c.EffectType = match.EffectType(effectType)
		c.Status = match.MatchStatus(status)
		if chrPosition.Valid {
			pos := uint64(chrPosition.Int64)
			c.ChrPosition = &pos
		}
		if otherAllele.Valid {
			oa := otherAllele.String
			c.OtherAllele = &oa
		}
		st, err := match.ParseStrategy(matchType)
		if err != nil {
			return nil, err
		}
		c.MatchType = st

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match candidates: %w", err)
	}
	return candidates, nil
}
