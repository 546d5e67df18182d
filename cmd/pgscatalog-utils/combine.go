package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ens-lgil/pgscatalog-utils/internal/duckdb"
	"github.com/ens-lgil/pgscatalog-utils/internal/match"
	"github.com/ens-lgil/pgscatalog-utils/internal/scorefile"
)

func runCombineMatches(args []string) int {
	fs := flag.NewFlagSet("combine-matches", flag.ExitOnError)

	var (
		dataset       string
		scorefilePath string
		matchPattern  string
		outdir        string
		minOverlap    float64
		keepAmbiguous bool
		split         bool
		nThreads      int
		verbose       bool
	)

	defaults := configDefaults()

	fs.StringVar(&dataset, "dataset", "", "Label for target genomic dataset")
	fs.StringVar(&dataset, "d", "", "Label for target genomic dataset (shorthand)")
	fs.StringVar(&scorefilePath, "scorefile", "", "Combined scorefile path")
	fs.StringVar(&scorefilePath, "s", "", "Combined scorefile path (shorthand)")
	fs.StringVar(&matchPattern, "matches", "", "Match shard path or glob (duckdb)")
	fs.StringVar(&matchPattern, "m", "", "Match shard path or glob (shorthand)")
	fs.StringVar(&outdir, "outdir", "", "Output directory")
	fs.Float64Var(&minOverlap, "min_overlap", defaults.MinOverlap, "Minimum proportion of variants to match before error (0 disables)")
	fs.BoolVar(&keepAmbiguous, "keep_ambiguous", false, "Keep strand-ambiguous variants matched by flip strategies")
	fs.BoolVar(&split, "split", false, "Split combined output per chromosome")
	fs.IntVar(&nThreads, "n", defaults.NThreads, "Worker count")
	fs.BoolVar(&verbose, "v", false, "Extra logging information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Combine chromosome-sharded match results, check global variant uniqueness
and write the final match logs.

Usage:
  pgscatalog-utils combine-matches [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  pgscatalog-utils combine-matches -d cohort -s scorefile.txt.gz -m 'results/*_match.duckdb' --outdir results
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if dataset == "" || scorefilePath == "" || matchPattern == "" || outdir == "" {
		fmt.Fprintf(os.Stderr, "Error: --dataset, --scorefile, --matches and --outdir are required\n\n")
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
		Dataset:         strings.ReplaceAll(dataset, "_", "-"),
		MinOverlap:      minOverlap,
		RemoveAmbiguous: !keepAmbiguous,
		Split:           split,
		NThreads:        nThreads,
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

	shardPaths, err := filepath.Glob(matchPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad match pattern: %v\n", err)
		return ExitError
	}
	if len(shardPaths) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no match files match %q\n", matchPattern)
		return ExitError
	}
	sort.Strings(shardPaths)

	shards := make([][]match.MatchCandidate, 0, len(shardPaths))
	for _, path := range shardPaths {
		logger.Debug("loading match shard", zap.String("path", path))
		store, err := duckdb.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		candidates, err := store.LoadCandidates()
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			return ExitError
		}
		shards = append(shards, candidates)
	}

	combined, err := session.Combine(shards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	result, runErr := session.Finalize(rows, combined)
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
