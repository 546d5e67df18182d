package match

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Config holds the matching parameters shared by the match and combine
// pipelines.
type Config struct {
	// Dataset labels every log row. Must not contain '_' (used as a field
	// delimiter by downstream calculators).
	Dataset string
	// MinOverlap is the minimum per-accession fraction of scoring file lines
	// that must match. Zero disables the gate.
	MinOverlap float64
	// RemoveAmbiguous drops palindromic candidates produced by flip
	// strategies (strand cannot be recovered for those).
	RemoveAmbiguous bool
	// RemoveMultiallelic drops multiallelic target rows instead of exploding
	// them into one row per alternate allele.
	RemoveMultiallelic bool
	// SkipFlip disables the four strand-complement strategies.
	SkipFlip bool
	// Split shards the match result output by chromosome.
	Split bool
	// NThreads bounds the candidate-generation fan-out.
	NThreads int
}

// DefaultConfig returns the library defaults. The command line front-ends
// take MinOverlap and NThreads from it and set the other fields from their
// own flags; match-variants removes multiallelic targets unless
// --keep_multiallelic is given, whereas RemoveMultiallelic is false here.
func DefaultConfig() Config {
	return Config{
		MinOverlap:      0.75,
		RemoveAmbiguous: true,
		NThreads:        1,
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("%w: dataset label is required", ErrConfig)
	}
	if strings.Contains(c.Dataset, "_") {
		return fmt.Errorf("%w: dataset label %q must not contain '_'", ErrConfig, c.Dataset)
	}
	if c.MinOverlap < 0 || c.MinOverlap > 1 {
		return fmt.Errorf("%w: min_overlap %v outside [0, 1]", ErrConfig, c.MinOverlap)
	}
	if c.NThreads < 1 {
		return fmt.Errorf("%w: n_threads %d must be positive", ErrConfig, c.NThreads)
	}
	return nil
}

// Session owns the state shared across a matching run: configuration, the
// string cache backing categorical columns, and the logger. The interner
// lives exactly as long as the session so dictionary ids stay comparable
// across every frame, including shards combined later.
type Session struct {
	cfg      Config
	interner *Interner
	log      *zap.Logger
}

// NewSession validates cfg and enters a fresh string cache.
func NewSession(cfg Config, log *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{cfg: cfg, interner: NewInterner(), log: log}, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// PrepareScorefile validates a freshly read scoring file, fills the strand
// complement columns and checks weight uniqueness. The slice is annotated in
// place and interned into the session cache.
func (s *Session) PrepareScorefile(rows []ScorefileRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: empty scorefile", ErrInvalidInput)
	}
	for i := range rows {
		if rows[i].EffectAllele == "" {
			return fmt.Errorf("%w: row %d of score %s has an empty effect allele",
				ErrInvalidInput, rows[i].RowNr, rows[i].Accession)
		}
		if rows[i].Accession == "" {
			return fmt.Errorf("%w: row %d has an empty accession", ErrInvalidInput, rows[i].RowNr)
		}
	}

	ComplementValidAlleles(rows)
	if err := CheckWeights(rows); err != nil {
		return err
	}

	for i := range rows {
		s.interner.Intern(rows[i].Accession)
		s.interner.Intern(rows[i].ChrName)
		s.interner.Intern(rows[i].EffectAllele)
		s.interner.Intern(rows[i].EffectAlleleFlip)
		if rows[i].OtherAllele != nil {
			s.interner.Intern(*rows[i].OtherAllele)
			s.interner.Intern(*rows[i].OtherAlleleFlip)
		}
	}
	s.log.Debug("scorefile prepared", zap.Int("rows", len(rows)))
	return nil
}

// PrepareTarget annotates and (per configuration) removes or explodes
// multiallelic rows, then interns the categorical columns.
func (s *Session) PrepareTarget(rows []TargetRow, isPvar bool) []TargetRow {
	rows = HandleMultiallelic(rows, s.cfg.RemoveMultiallelic, isPvar, s.log)
	for i := range rows {
		s.interner.Intern(rows[i].Chrom)
		s.interner.Intern(rows[i].ID)
		s.interner.Intern(rows[i].Ref)
		s.interner.Intern(rows[i].Alt)
	}
	s.log.Debug("target prepared", zap.Int("rows", len(rows)))
	return rows
}

// Match runs candidate generation and postprocessing for one prepared
// scoring file against one prepared target frame.
func (s *Session) Match(scorefile []ScorefileRow, target []TargetRow) []MatchCandidate {
	candidates := s.generateCandidates(scorefile, target)
	return s.Postprocess(candidates)
}

// MatchAll generates candidates for each target frame and postprocesses the
// union once, so duplicate flags and best-match selection see every frame.
func (s *Session) MatchAll(scorefile []ScorefileRow, targets [][]TargetRow) []MatchCandidate {
	var all []MatchCandidate
	for _, t := range targets {
		all = append(all, s.generateCandidates(scorefile, t)...)
	}
	return s.Postprocess(all)
}

// Result bundles the outputs of a finished pipeline run.
type Result struct {
	Candidates    []MatchCandidate
	FilterSummary []FilterSummary
	RawLog        []LogRow
	SummaryLog    []SummaryRow
}

// Finalize runs the coverage gate and assembles both logs. The logs are
// built even when the gate fails so callers can write them before
// propagating the error.
func (s *Session) Finalize(scorefile []ScorefileRow, candidates []MatchCandidate) (*Result, error) {
	summary, gateErr := s.CheckCoverage(scorefile, candidates)

	rawLog := s.AssembleRawLog(scorefile, candidates)
	summaryLog, err := s.AssembleSummaryLog(scorefile, candidates, summary)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Candidates:    candidates,
		FilterSummary: summary,
		RawLog:        rawLog,
		SummaryLog:    summaryLog,
	}
	return res, gateErr
}
