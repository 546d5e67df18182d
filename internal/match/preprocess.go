package match

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// complementTable maps each valid DNA base to its Watson-Crick partner.
var complementTable = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
}

// isValidDNA reports whether s matches ^[ACGT]+$.
func isValidDNA(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := complementTable[s[i]]; !ok {
			return false
		}
	}
	return true
}

// ComplementAllele returns the character-wise Watson-Crick complement of a
// valid DNA allele, or the allele unchanged when it contains any other
// symbol (e.g. indel codes, HLA alleles). Length-preserving and an
// involution on valid DNA.
func ComplementAllele(allele string) string {
	if !isValidDNA(allele) {
		return allele
	}
	out := make([]byte, len(allele))
	for i := 0; i < len(allele); i++ {
		out[i] = complementTable[allele[i]]
	}
	return string(out)
}

// ComplementValidAlleles fills the _FLIP columns of every scoring file row.
func ComplementValidAlleles(rows []ScorefileRow) {
	for i := range rows {
		rows[i].EffectAlleleFlip = ComplementAllele(rows[i].EffectAllele)
		if rows[i].OtherAllele != nil {
			flip := ComplementAllele(*rows[i].OtherAllele)
			rows[i].OtherAlleleFlip = &flip
		} else {
			rows[i].OtherAlleleFlip = nil
		}
	}
}

// HandleMultiallelic annotates IsMultiallelic on target rows (pvar encodes
// multiallelic sites as comma-separated ALT) and either removes those rows
// or explodes each into one row per alternate allele sharing the original
// chromosome, position, REF and ID.
func HandleMultiallelic(rows []TargetRow, remove, isPvar bool, log *zap.Logger) []TargetRow {
	n := 0
	for i := range rows {
		rows[i].IsMultiallelic = strings.Contains(rows[i].Alt, ",")
		if rows[i].IsMultiallelic {
			n++
		}
	}

	if n == 0 {
		log.Debug("no multiallelic variants detected")
		return rows
	}
	log.Debug("multiallelic variants detected", zap.Int("count", n))

	if remove {
		if !isPvar {
			log.Warn("remove_multiallelic requested for bim format, which already contains biallelic variant representations only")
		}
		log.Debug("dropping multiallelic variants")
		out := rows[:0]
		for _, r := range rows {
			if !r.IsMultiallelic {
				out = append(out, r)
			}
		}
		return out
	}

	log.Debug("exploding multiallelic variants")
	out := make([]TargetRow, 0, len(rows)+n)
	for _, r := range rows {
		if !r.IsMultiallelic {
			out = append(out, r)
			continue
		}
		for _, alt := range strings.Split(r.Alt, ",") {
			exploded := r
			exploded.Alt = alt
			out = append(out, exploded)
		}
	}
	return out
}

// weightKey identifies a matchable variant within one accession.
type weightKey struct {
	accession, chrName, effectAllele string
	chrPosition                      uint64
}

// CheckWeights fails when a scoring file carries more than one effect weight
// for the same matchable variant (accession, chromosome, position, effect
// allele). Rows without a position cannot be matched and are skipped.
func CheckWeights(rows []ScorefileRow) error {
	counts := make(map[weightKey]int)
	for i := range rows {
		if rows[i].ChrPosition == nil || rows[i].ChrName == "" {
			continue
		}
		k := weightKey{
			accession:    rows[i].Accession,
			chrName:      rows[i].ChrName,
			effectAllele: rows[i].EffectAllele,
			chrPosition:  *rows[i].ChrPosition,
		}
		counts[k]++
	}

	dup := make(map[string]bool)
	for k, c := range counts {
		if c > 1 {
			dup[k.accession] = true
		}
	}
	if len(dup) == 0 {
		return nil
	}

	accessions := make([]string, 0, len(dup))
	for a := range dup {
		accessions = append(accessions, a)
	}
	sort.Strings(accessions)
	return &DuplicateWeightError{Accessions: accessions}
}
