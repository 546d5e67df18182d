// Package main provides the pgscatalog-utils command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("pgscatalog-utils version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "match-variants":
		return runMatchVariants(args[1:])
	case "combine-matches":
		return runCombineMatches(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `pgscatalog-utils - polygenic score variant matching

Usage:
  pgscatalog-utils [options] <command> [arguments]

Commands:
  match-variants    Match a combined scoring file against target variant tables
  combine-matches   Combine chromosome-sharded match results
  config            Manage persistent defaults
  help              Show this help message

Global Options:
  --version   Show version information

Examples:
  # Match a scoring file against a per-chromosome pvar shard
  pgscatalog-utils match-variants -d cohort -s scorefile.txt.gz -t 'chr*.pvar' --outdir results

  # Combine sharded match results and write the final logs
  pgscatalog-utils combine-matches -d cohort -s scorefile.txt.gz -m 'results/*_match.duckdb' --outdir results

For more information on a command, use:
  pgscatalog-utils <command> --help
`)
}

// newLogger builds the console logger. Verbose enables per-stage debug logs.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
