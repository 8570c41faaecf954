package pipeline

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	"github.com/banshee-data/overpass.report/internal/monitoring"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

func init() {
	monitoring.SetLogger(nil)
}

type fakeResolver struct {
	fail map[sentinel.Satellite]error
}

func (r *fakeResolver) Resolve(sat sentinel.Satellite) (string, string, error) {
	if err := r.fail[sat]; err != nil {
		return "", "", err
	}
	return "https://example.com/" + string(sat), string(sat) + "_plan", nil
}

type fakeFetcher struct {
	fail map[sentinel.Satellite]error
}

func (f *fakeFetcher) Fetch(sat sentinel.Satellite, url, filename string) (string, error) {
	if err := f.fail[sat]; err != nil {
		return "", err
	}
	return "/cache/" + filename + ".kml", nil
}

type fakeLoader struct {
	collections map[sentinel.Satellite]*plan.Collection
	fail        map[sentinel.Satellite]error
}

func (l *fakeLoader) Load(path string, sat sentinel.Satellite) (*plan.Collection, error) {
	if err := l.fail[sat]; err != nil {
		return nil, err
	}
	return l.collections[sat], nil
}

func worldRect(sat sentinel.Satellite, id string) *plan.Collection {
	return &plan.Collection{
		Satellite: sat,
		Records: []plan.Record{{
			ID:        id,
			Satellite: sat,
			Begin:     "2025-06-03T19:37:18.057",
			Geometry: orb.Polygon{{
				{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90},
			}},
		}},
	}
}

func testPipeline() (*Pipeline, *fakeLoader) {
	loader := &fakeLoader{
		collections: map[sentinel.Satellite]*plan.Collection{
			sentinel.S2A: worldRect(sentinel.S2A, "a-1"),
			sentinel.S2B: worldRect(sentinel.S2B, "b-1"),
			sentinel.S2C: worldRect(sentinel.S2C, "c-1"),
		},
		fail: map[sentinel.Satellite]error{},
	}
	p := New(
		&fakeResolver{fail: map[sentinel.Satellite]error{}},
		&fakeFetcher{fail: map[sentinel.Satellite]error{}},
		loader,
	)
	return p, loader
}

func matchIDs(results []Result) []string {
	var ids []string
	for _, res := range results {
		for _, m := range res.Matches {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func TestRunAllSatellites(t *testing.T) {
	p, _ := testPipeline()

	results := p.Run(sentinel.All(), plan.Point{Lat: 47.6, Lon: -122.3})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"a-1", "b-1", "c-1"}
	if diff := cmp.Diff(want, matchIDs(results)); diff != "" {
		t.Errorf("match ids mismatch (-want +got):\n%s", diff)
	}
	for i, sat := range sentinel.All() {
		if results[i].Satellite != sat {
			t.Errorf("results[%d].Satellite = %s, want %s", i, results[i].Satellite, sat)
		}
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	p, loader := testPipeline()
	loader.fail[sentinel.S2B] = fmt.Errorf("malformed plan document")

	results := p.Run(sentinel.All(), plan.Point{Lat: 0, Lon: 0})

	if results[0].Failed() || results[2].Failed() {
		t.Error("healthy satellites reported failure")
	}
	if !results[1].Failed() {
		t.Error("S2B should have failed")
	}
	if len(results[1].Matches) != 0 {
		t.Errorf("failed satellite has %d matches, want 0", len(results[1].Matches))
	}
	if len(results[0].Matches) != 1 || len(results[2].Matches) != 1 {
		t.Error("healthy satellites should still produce matches")
	}
}

func TestResolveFailureIsolated(t *testing.T) {
	p, _ := testPipeline()
	p.Resolver = &fakeResolver{fail: map[sentinel.Satellite]error{
		sentinel.S2A: fmt.Errorf("page structure changed"),
	}}

	results := p.Run(sentinel.All(), plan.Point{Lat: 0, Lon: 0})
	if !results[0].Failed() {
		t.Error("S2A should have failed to resolve")
	}
	if results[1].Failed() || results[2].Failed() {
		t.Error("other satellites should be unaffected")
	}
}

func TestFetchFailureIsolated(t *testing.T) {
	p, _ := testPipeline()
	p.Fetcher = &fakeFetcher{fail: map[sentinel.Satellite]error{
		sentinel.S2C: fmt.Errorf("transfer failed"),
	}}

	results := p.Run(sentinel.All(), plan.Point{Lat: 0, Lon: 0})
	if !results[2].Failed() {
		t.Error("S2C should have failed to fetch")
	}
	if results[0].Failed() || results[1].Failed() {
		t.Error("other satellites should be unaffected")
	}
}

func TestConcurrentRunMatchesSequential(t *testing.T) {
	p, _ := testPipeline()
	point := plan.Point{Lat: 10, Lon: 10}

	sequential := p.Run(sentinel.All(), point)

	p.Concurrent = true
	concurrent := p.Run(sentinel.All(), point)

	if diff := cmp.Diff(matchIDs(sequential), matchIDs(concurrent)); diff != "" {
		t.Errorf("concurrent results differ from sequential (-seq +conc):\n%s", diff)
	}
	for i := range sequential {
		if sequential[i].Satellite != concurrent[i].Satellite {
			t.Errorf("result order differs at %d", i)
		}
	}
}

func TestLoadAll(t *testing.T) {
	p, loader := testPipeline()
	loader.fail[sentinel.S2A] = fmt.Errorf("nope")

	results := p.LoadAll(sentinel.All())
	if !results[0].Failed() {
		t.Error("S2A should have failed")
	}
	if results[1].Collection == nil || results[2].Collection == nil {
		t.Error("healthy satellites should have collections")
	}
	for _, res := range results {
		if res.Matches != nil {
			t.Error("LoadAll should not query")
		}
	}
}
