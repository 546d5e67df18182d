package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ens-lgil/pgscatalog-utils/internal/duckdb"
	"github.com/ens-lgil/pgscatalog-utils/internal/match"
	"github.com/ens-lgil/pgscatalog-utils/internal/output"
	"github.com/ens-lgil/pgscatalog-utils/internal/scorefile"
	"github.com/ens-lgil/pgscatalog-utils/internal/target"
)

func runMatchVariants(args []string) int {
	fs := flag.NewFlagSet("match-variants", flag.ExitOnError)

	var (
		dataset          string
		scorefilePath    string
		targetPattern    string
		outdir           string
		minOverlap       float64
		keepAmbiguous    bool
		keepMultiallelic bool
		skipFlip         bool
		split            bool
		nThreads         int
		verbose          bool
	)

	defaults := configDefaults()

	fs.StringVar(&dataset, "dataset", "", "Label for target genomic dataset")
	fs.StringVar(&dataset, "d", "", "Label for target genomic dataset (shorthand)")
	fs.StringVar(&scorefilePath, "scorefile", "", "Combined scorefile path")
	fs.StringVar(&scorefilePath, "s", "", "Combined scorefile path (shorthand)")
	fs.StringVar(&targetPattern, "target", "", "Target variant table path or glob (bim or pvar)")
	fs.StringVar(&targetPattern, "t", "", "Target variant table path or glob (shorthand)")
	fs.StringVar(&outdir, "outdir", "", "Output directory")
	fs.Float64Var(&minOverlap, "min_overlap", defaults.MinOverlap, "Minimum proportion of variants to match before error (0 disables)")
	fs.BoolVar(&keepAmbiguous, "keep_ambiguous", false, "Keep strand-ambiguous variants matched by flip strategies")
	fs.BoolVar(&keepMultiallelic, "keep_multiallelic", false, "Explode multiallelic target variants instead of dropping them")
	fs.BoolVar(&skipFlip, "skip_flip", false, "Disable strand-complement match strategies")
	fs.BoolVar(&split, "split", false, "Split match result output per chromosome")
	fs.IntVar(&nThreads, "n", defaults.NThreads, "Worker count for candidate generation")
	fs.BoolVar(&verbose, "v", false, "Extra logging information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Match variants from a combined scoring file against target variant tables.

Usage:
  pgscatalog-utils match-variants [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pgscatalog-utils match-variants -d cohort -s scorefile.txt.gz -t target.pvar --outdir results
  pgscatalog-utils match-variants -d cohort -s scorefile.txt.gz -t 'chr*.bim' --split --outdir results
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if dataset == "" || scorefilePath == "" || targetPattern == "" || outdir == "" {
		fmt.Fprintf(os.Stderr, "Error: --dataset, --scorefile, --target and --outdir are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer logger.Sync()

	cfg := match.Config{
		// Underscores delimit fields downstream.
		Dataset:            strings.ReplaceAll(dataset, "_", "-"),
		MinOverlap:         minOverlap,
		RemoveAmbiguous:    !keepAmbiguous,
		RemoveMultiallelic: !keepMultiallelic,
		SkipFlip:           skipFlip,
		Split:              split,
		NThreads:           nThreads,
	}

	session, err := match.NewSession(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	rows, err := scorefile.Read(scorefilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if err := session.PrepareScorefile(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	targetPaths, err := filepath.Glob(targetPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad target pattern: %v\n", err)
		return ExitError
	}
	if len(targetPaths) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no target files match %q\n", targetPattern)
		return ExitError
	}
	sort.Strings(targetPaths)

	targets := make([][]match.TargetRow, 0, len(targetPaths))
	for _, path := range targetPaths {
		format := target.DetectFormat(path)
		logger.Debug("reading target", zap.String("path", path), zap.String("format", string(format)))
		t, err := target.Read(path, format, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		if len(targetPaths) > 1 {
			if err := checkTargetChroms(t); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
				return ExitError
			}
		}
		targets = append(targets, session.PrepareTarget(t, format == target.FormatPvar))
	}

	candidates := session.MatchAll(rows, targets)

	result, runErr := session.Finalize(rows, candidates)
	if result != nil {
		if err := writeResult(session.Config(), outdir, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return ExitError
	}
	return ExitSuccess
}

// checkTargetChroms rejects shard files spanning more than one chromosome.
func checkTargetChroms(rows []match.TargetRow) error {
	chroms := make(map[string]bool)
	for i := range rows {
		chroms[rows[i].Chrom] = true
	}
	if len(chroms) > 1 {
		return errors.New("multiple chromosomes detected in split file")
	}
	return nil
}

// writeResult writes both logs and the match candidate frame(s).
func writeResult(cfg match.Config, outdir string, result *match.Result) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rawPath := filepath.Join(outdir, cfg.Dataset+"_log.tsv.gz")
	if err := output.WriteRawLogFile(rawPath, result.RawLog); err != nil {
		return err
	}
	summaryPath := filepath.Join(outdir, cfg.Dataset+"_summary.tsv")
	if err := output.WriteSummaryLogFile(summaryPath, result.SummaryLog); err != nil {
		return err
	}

	if !cfg.Split {
		return writeCandidateShard(filepath.Join(outdir, cfg.Dataset+"_match.duckdb"), result.Candidates)
	}

	byChrom := make(map[string][]match.MatchCandidate)
	var chroms []string
	for _, c := range result.Candidates {
		if _, seen := byChrom[c.ChrName]; !seen {
			chroms = append(chroms, c.ChrName)
		}
		byChrom[c.ChrName] = append(byChrom[c.ChrName], c)
	}
	sort.Strings(chroms)
	for _, chrom := range chroms {
		path := filepath.Join(outdir, fmt.Sprintf("%s_chr%s_match.duckdb", cfg.Dataset, chrom))
		if err := writeCandidateShard(path, byChrom[chrom]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidateShard(path string, candidates []match.MatchCandidate) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove stale shard: %w", err)
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.WriteCandidates(candidates)
}
