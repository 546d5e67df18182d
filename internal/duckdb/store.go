// Package duckdb persists match candidate frames as DuckDB databases.
// Chromosome-sharded matching runs each write one shard; the combiner scans
// the shards back and concatenates them.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding one match candidate frame.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the candidate table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS match_candidates (
		row_nr BIGINT,
		accession VARCHAR,
		chr_name VARCHAR,
		chr_position BIGINT,
		effect_allele VARCHAR,
		other_allele VARCHAR,
		effect_weight VARCHAR,
		effect_type VARCHAR,
		variant_id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		matched_effect_allele VARCHAR,
		match_type VARCHAR,
		is_multiallelic BOOLEAN,
		ambiguous BOOLEAN,
		match_flipped BOOLEAN,
		duplicate_best_match BOOLEAN,
		duplicate_id BOOLEAN,
		best_match BOOLEAN,
		exclude BOOLEAN,
		match_status VARCHAR
	)`)
	return err
}
