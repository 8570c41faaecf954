package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/sentinel"
	"github.com/banshee-data/overpass.report/internal/timeutil"
)

func openTestStore(t *testing.T, clock timeutil.Clock) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() []pipeline.Result {
	return []pipeline.Result{
		{
			Satellite: sentinel.S2A,
			Matches: []plan.Match{
				{ID: "51948-2", Begin: "2025-06-03T19:37:18.057"},
				{ID: "51950-1", Begin: "2025-06-04T01:12:00.500"},
			},
		},
		{Satellite: sentinel.S2B, Err: fmt.Errorf("malformed plan document")},
		{Satellite: sentinel.S2C},
	}
}

func TestRecordAndReadRun(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC))
	s := openTestStore(t, clock)

	runID, err := s.RecordRun("Seattle, WA", plan.Point{Lat: 47.6062, Lon: -122.3321}, sampleResults())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "Seattle, WA", run.Location)
	assert.InDelta(t, 47.6062, run.Lat, 1e-9)
	assert.InDelta(t, -122.3321, run.Lon, 1e-9)
	assert.Equal(t, 2, run.Matches)
	assert.Equal(t, 1, run.Errors)

	matches, err := s.MatchesForRun(runID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "51948-2", matches[0].RecordID)
	assert.Equal(t, 0, matches[0].Position)
	assert.Equal(t, "2025-06-03T19:37:18.057", matches[0].Begin)
	assert.Equal(t, "51950-1", matches[1].RecordID)
}

func TestRecentRunsOrder(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC))
	s := openTestStore(t, clock)

	first, err := s.RecordRun("first", plan.Point{}, nil)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := s.RecordRun("second", plan.Point{}, nil)
	require.NoError(t, err)

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].RunID)
	assert.Equal(t, first, runs[1].RunID)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Re-opening applies no further migrations and keeps existing data.
	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.RecentRuns(1)
	assert.NoError(t, err)
}
