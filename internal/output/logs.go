// Package output writes the match logs as tab-delimited files.
package output

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ens-lgil/pgscatalog-utils/internal/match"
)

// RawLogWriter writes the per-candidate log in tab-delimited format.
type RawLogWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewRawLogWriter creates a new raw log writer.
func NewRawLogWriter(w io.Writer) *RawLogWriter {
	return &RawLogWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"row_nr",
			"accession",
			"chr_name",
			"chr_position",
			"effect_allele",
			"other_allele",
			"effect_weight",
			"effect_type",
			"ID",
			"REF",
			"ALT",
			"matched_effect_allele",
			"match_type",
			"is_multiallelic",
			"ambiguous",
			"duplicate_best_match",
			"duplicate_ID",
			"match_status",
			"dataset",
		},
	}
}

// WriteHeader writes the header line.
func (lw *RawLogWriter) WriteHeader() error {
	_, err := lw.w.WriteString(strings.Join(lw.columns, "\t") + "\n")
	return err
}

// Write writes a single log row. Candidate-side fields of unmatched rows are
// written as empty strings.
func (lw *RawLogWriter) Write(row *match.LogRow) error {
	values := []string{
		strconv.Itoa(row.RowNr),
		row.Accession,
		row.ChrName,
		optUint(row.ChrPosition),
		row.EffectAllele,
		optString(row.OtherAllele),
		row.EffectWeight,
		string(row.EffectType),
		optString(row.ID),
		optString(row.Ref),
		optString(row.Alt),
		optString(row.MatchedEffectAllele),
		optStrategy(row.MatchType),
		optBool(row.IsMultiallelic),
		optBool(row.Ambiguous),
		optBool(row.DuplicateBestMatch),
		optBool(row.DuplicateID),
		string(row.Status),
		row.Dataset,
	}
	_, err := lw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (lw *RawLogWriter) Flush() error {
	return lw.w.Flush()
}

// SummaryLogWriter writes the aggregated per-accession log.
type SummaryLogWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewSummaryLogWriter creates a new summary log writer.
func NewSummaryLogWriter(w io.Writer) *SummaryLogWriter {
	return &SummaryLogWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"dataset",
			"accession",
			"score_pass",
			"match_status",
			"ambiguous",
			"is_multiallelic",
			"duplicate_best_match",
			"duplicate_ID",
			"count",
			"percent",
		},
	}
}

// WriteHeader writes the header line.
func (sw *SummaryLogWriter) WriteHeader() error {
	_, err := sw.w.WriteString(strings.Join(sw.columns, "\t") + "\n")
	return err
}

// Write writes a single summary row.
func (sw *SummaryLogWriter) Write(row *match.SummaryRow) error {
	values := []string{
		row.Dataset,
		row.Accession,
		strconv.FormatBool(row.ScorePass),
		string(row.Status),
		optBool(row.Ambiguous),
		optBool(row.IsMultiallelic),
		optBool(row.DuplicateBestMatch),
		optBool(row.DuplicateID),
		strconv.Itoa(row.Count),
		strconv.FormatFloat(row.Percent, 'f', 5, 64),
	}
	_, err := sw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (sw *SummaryLogWriter) Flush() error {
	return sw.w.Flush()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optUint(v *uint64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(*v, 10)
}

func optBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func optStrategy(s *match.Strategy) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// WriteRawLogFile writes the raw log to path, gzip-compressed when the path
// ends in .gz.
func WriteRawLogFile(path string, rows []match.LogRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create raw log: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}

	lw := NewRawLogWriter(w)
	if err := lw.WriteHeader(); err != nil {
		return fmt.Errorf("write raw log header: %w", err)
	}
	for i := range rows {
		if err := lw.Write(&rows[i]); err != nil {
			return fmt.Errorf("write raw log row: %w", err)
		}
	}
	if err := lw.Flush(); err != nil {
		return fmt.Errorf("flush raw log: %w", err)
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

// WriteSummaryLogFile writes the summary log to path.
func WriteSummaryLogFile(path string, rows []match.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary log: %w", err)
	}
	defer f.Close()

	sw := NewSummaryLogWriter(f)
	if err := sw.WriteHeader(); err != nil {
		return fmt.Errorf("write summary log header: %w", err)
	}
	for i := range rows {
		if err := sw.Write(&rows[i]); err != nil {
			return fmt.Errorf("write summary log row: %w", err)
		}
	}
	return sw.Flush()
}
