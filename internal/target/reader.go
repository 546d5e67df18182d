// Package target reads plink variant tables (bim and pvar flavours) into
// target rows.
package target

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

// Format is the variant table flavour.
type Format string

const (
	FormatBim  Format = "bim"
	FormatPvar Format = "pvar"
)

// DetectFormat guesses the variant table flavour from the file name,
// ignoring a trailing .gz. Defaults to pvar.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	lower = strings.TrimSuffix(lower, ".gz")
	if strings.HasSuffix(lower, ".bim") {
		return FormatBim
	}
	return FormatPvar
}

// Read reads every variant from a bim or pvar file, optionally keeping only
// one chromosome (empty chrom reads everything). Supports gzipped input.
func Read(path string, format Format, chrom string) ([]match.TargetRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		return nil, fmt.Errorf("read target header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek target: %w", err)
	}

	var raw io.Reader = file
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		raw = gz
	}
	return ReadFrom(raw, format, chrom)
}

// ReadFrom parses a variant table from an io.Reader.
func ReadFrom(raw io.Reader, format Format, chrom string) ([]match.TargetRow, error) {
	switch format {
	case FormatBim:
		return readBim(raw, chrom)
	case FormatPvar:
		return readPvar(raw, chrom)
	default:
		return nil, fmt.Errorf("%w: unknown target format %q", match.ErrInvalidInput, format)
	}
}

func newScanner(raw io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(raw)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}

// readPvar parses a plink2 pvar file: '##' metadata lines, a '#CHROM' header
// line, then one variant per line. ALT may be comma-separated (multiallelic
// sites); that is resolved later by preprocessing.
func readPvar(raw io.Reader, chrom string) ([]match.TargetRow, error) {
	sc := newScanner(raw)
	var columns map[string]int
	var rows []match.TargetRow
	lineNumber := 0

	for sc.Scan() {
		lineNumber++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			columns = make(map[string]int, len(fields))
			for i, name := range fields {
				columns[name] = i
			}
			for _, name := range []string{"#CHROM", "POS", "ID", "REF", "ALT"} {
				if _, ok := columns[name]; !ok {
					return nil, fmt.Errorf("%w: pvar missing required column %q", match.ErrInvalidInput, name)
				}
			}
			continue
		}
		if columns == nil {
			return nil, fmt.Errorf("%w: pvar line %d before #CHROM header", match.ErrInvalidInput, lineNumber)
		}

		fields := strings.Split(line, "\t")
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("%w: pvar line %d has %d fields, expected %d",
				match.ErrInvalidInput, lineNumber, len(fields), len(columns))
		}
		if chrom != "" && fields[columns["#CHROM"]] != chrom {
			continue
		}
		pos, err := strconv.ParseUint(fields[columns["POS"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: pvar line %d has malformed POS %q",
				match.ErrInvalidInput, lineNumber, fields[columns["POS"]])
		}
		rows = append(rows, match.TargetRow{
			Chrom: fields[columns["#CHROM"]],
			Pos:   pos,
			ID:    fields[columns["ID"]],
			Ref:   fields[columns["REF"]],
			Alt:   fields[columns["ALT"]],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pvar: %w", err)
	}
	if columns == nil {
		return nil, fmt.Errorf("%w: pvar has no #CHROM header", match.ErrInvalidInput)
	}
	return rows, nil
}

// readBim parses a plink1 bim file: six headerless columns (chromosome, ID,
// genetic distance, position, A1, A2). A1 maps to ALT and A2 to REF.
func readBim(raw io.Reader, chrom string) ([]match.TargetRow, error) {
	sc := newScanner(raw)
	var rows []match.TargetRow
	lineNumber := 0

	for sc.Scan() {
		lineNumber++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("%w: bim line %d has %d fields, expected 6",
				match.ErrInvalidInput, lineNumber, len(fields))
		}
		if chrom != "" && fields[0] != chrom {
			continue
		}
		pos, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bim line %d has malformed position %q",
				match.ErrInvalidInput, lineNumber, fields[3])
		}
		rows = append(rows, match.TargetRow{
			Chrom: fields[0],
			Pos:   pos,
			ID:    fields[1],
			Ref:   fields[5],
			Alt:   fields[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bim: %w", err)
	}
	return rows, nil
}
