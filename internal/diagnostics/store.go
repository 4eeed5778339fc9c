// Package diagnostics provides optional, non-blocking recording of
// per-sweep feature counts and feature-count bar charts, for offline tuning of the
// thresholds in internal/config. Nothing in the registration pipeline
// depends on this package; it subscribes to emit.Publisher the same way
// any other consumer would.
package diagnostics

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/scan-registration/internal/emit"
)

//go:embed schema.sql
var schemaSQL string

// Store records sweep feature counts to a SQLite database for later
// inspection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a diagnostics database at path and
// applies the embedded schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("diagnostics: applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSweep inserts one sweep's feature counts.
func (s *Store) RecordSweep(out emit.Output) error {
	_, err := s.db.Exec(
		`INSERT INTO sweep_diagnostics
			(sweep_id, captured_at_unix_nanos, corner_sharp_count, corner_less_sharp_count, surf_flat_count, surf_less_flat_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		out.SweepID, out.Timestamp.UnixNano(),
		len(out.CornerSharp), len(out.CornerLessSharp), len(out.SurfFlat), len(out.SurfLessFlat),
	)
	if err != nil {
		return fmt.Errorf("diagnostics: recording sweep %s: %w", out.SweepID, err)
	}
	return nil
}

// Subscriber returns an emit.Subscriber that records every published
// sweep, logging (rather than propagating) any write error so a
// diagnostics outage never stalls the registration pipeline.
func (s *Store) Subscriber(onError func(error)) emit.Subscriber {
	return func(out emit.Output) {
		if err := s.RecordSweep(out); err != nil && onError != nil {
			onError(err)
		}
	}
}
