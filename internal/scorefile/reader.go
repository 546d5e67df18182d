// Package scorefile reads combined scoring files into scorefile rows.
package scorefile

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

var requiredColumns = []string{
	"chr_name", "chr_position", "effect_allele", "other_allele",
	"effect_weight", "effect_type", "accession",
}

// Reader parses a tab-separated combined scoring file (the output of the
// scoring file download/combine tooling). Supports plain and gzipped input.
type Reader struct {
	scanner    *bufio.Scanner
	file       *os.File
	gzipReader *gzip.Reader
	columns    map[string]int
	rowNr      int
	lineNumber int
}

// Open opens a combined scoring file and parses its header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scorefile: %w", err)
	}

	r := &Reader{file: file}

	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read scorefile header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek scorefile: %w", err)
	}

	var raw io.Reader = file
	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		raw = r.gzipReader
	}
	r.scanner = bufio.NewScanner(raw)
	r.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if err := r.parseHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewReader parses a scoring file from an io.Reader (plain text only).
func NewReader(raw io.Reader) (*Reader, error) {
	r := &Reader{scanner: bufio.NewScanner(raw)}
	r.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseHeader() error {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return fmt.Errorf("read scorefile header: %w", err)
		}
		return fmt.Errorf("%w: empty scorefile", match.ErrInvalidInput)
	}
	r.lineNumber++

	fields := strings.Split(strings.TrimRight(r.scanner.Text(), "\r\n"), "\t")
	r.columns = make(map[string]int, len(fields))
	for i, name := range fields {
		r.columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := r.columns[name]; !ok {
			return fmt.Errorf("%w: scorefile missing required column %q", match.ErrInvalidInput, name)
		}
	}
	return nil
}

// Next returns the next scoring file row, or nil at end of input. Row
// numbers are assigned in file order starting at zero.
func (r *Reader) Next() (*match.ScorefileRow, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimRight(r.scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < len(r.columns) {
			return nil, fmt.Errorf("%w: scorefile line %d has %d fields, expected %d",
				match.ErrInvalidInput, r.lineNumber, len(fields), len(r.columns))
		}

		row := &match.ScorefileRow{
			RowNr:        r.rowNr,
			Accession:    fields[r.columns["accession"]],
			ChrName:      fields[r.columns["chr_name"]],
			EffectAllele: fields[r.columns["effect_allele"]],
			EffectWeight: fields[r.columns["effect_weight"]],
			EffectType:   match.EffectType(fields[r.columns["effect_type"]]),
		}
		r.rowNr++

		if pos := fields[r.columns["chr_position"]]; pos != "" {
			v, err := strconv.ParseUint(pos, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: scorefile line %d has malformed chr_position %q",
					match.ErrInvalidInput, r.lineNumber, pos)
			}
			row.ChrPosition = &v
		}
		if other := fields[r.columns["other_allele"]]; other != "" {
			row.OtherAllele = &other
		}
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scorefile: %w", err)
	}
	return nil, nil
}

// ReadAll consumes the remaining rows, optionally keeping only one
// chromosome (empty chrom reads everything).
func (r *Reader) ReadAll(chrom string) ([]match.ScorefileRow, error) {
	var rows []match.ScorefileRow
	for {
		row, err := r.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		if chrom != "" && row.ChrName != chrom {
			continue
		}
		rows = append(rows, *row)
	}
}

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Read opens path and reads every row.
func Read(path string) ([]match.ScorefileRow, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAll("")
}
