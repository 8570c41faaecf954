// Package store archives query runs and their matches in sqlite so past
// results stay inspectable after the one-shot process exits.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/timeutil"
)

// Store wraps the archive database.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Run is one archived query run.
type Run struct {
	RunID     string
	Location  string
	Lat       float64
	Lon       float64
	CreatedAt time.Time
	Matches   int
	Errors    int
}

// ArchivedMatch is one archived match row.
type ArchivedMatch struct {
	Satellite string
	Position  int
	RecordID  string
	Begin     string
}

// Open opens (creating if needed) the archive at path and applies any
// pending migrations. A nil clock uses the real clock.
func Open(path string, clock timeutil.Clock) (*Store, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	s := &Store{db: db, clock: clock}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun archives one query run: the point, each satellite's matches
// in document order, and each failed satellite's error. It returns the
// generated run id.
func (s *Store) RecordRun(location string, point plan.Point, results []pipeline.Result) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO query_runs (run_id, location, lat, lon, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, location, point.Lat, point.Lon, s.clock.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, res := range results {
		if res.Failed() {
			_, err = tx.Exec(
				`INSERT INTO query_errors (run_id, satellite, error) VALUES (?, ?, ?)`,
				runID, string(res.Satellite), res.Err.Error(),
			)
			if err != nil {
				return "", fmt.Errorf("insert error row: %w", err)
			}
			continue
		}
		for i, m := range res.Matches {
			_, err = tx.Exec(
				`INSERT INTO query_matches (run_id, satellite, position, record_id, begin_ts) VALUES (?, ?, ?, ?, ?)`,
				runID, string(res.Satellite), i, m.ID, m.Begin,
			)
			if err != nil {
				return "", fmt.Errorf("insert match row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit archive tx: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT r.run_id, r.location, r.lat, r.lon, r.created_at,
		       (SELECT COUNT(*) FROM query_matches m WHERE m.run_id = r.run_id),
		       (SELECT COUNT(*) FROM query_errors e WHERE e.run_id = r.run_id)
		FROM query_runs r
		ORDER BY r.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Location, &r.Lat, &r.Lon, &r.CreatedAt, &r.Matches, &r.Errors); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MatchesForRun returns the archived matches of one run in satellite then
// document order.
func (s *Store) MatchesForRun(runID string) ([]ArchivedMatch, error) {
	rows, err := s.db.Query(`
		SELECT satellite, position, record_id, begin_ts
		FROM query_matches
		WHERE run_id = ?
		ORDER BY satellite, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []ArchivedMatch
	for rows.Next() {
		var m ArchivedMatch
		if err := rows.Scan(&m.Satellite, &m.Position, &m.RecordID, &m.Begin); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
