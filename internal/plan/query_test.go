package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	"github.com/banshee-data/overpass.report/internal/sentinel"
)

func rectangle(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}}
}

func testCollection() *Collection {
	return &Collection{
		Satellite: sentinel.S2A,
		Records: []Record{
			{ID: "51948-2", Geometry: rectangle(-123, 47, -121, 48), Begin: "2025-06-03T19:37:18.057", Satellite: sentinel.S2A},
			{ID: "51949-1", Geometry: rectangle(10, 50, 11, 51), Begin: "2025-06-03T21:10:00.000", Satellite: sentinel.S2A},
			{ID: "51950-3", Geometry: rectangle(-130, 40, -110, 50), Begin: "2025-06-04T01:12:00.500", Satellite: sentinel.S2A},
		},
	}
}

func TestQueryContainment(t *testing.T) {
	col := testCollection()

	// Seattle is inside the first and third rectangles.
	matches := Query(col, Point{Lat: 47.6062, Lon: -122.3321})
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "51948-2" || matches[1].ID != "51950-3" {
		t.Errorf("unexpected match ids: %q, %q", matches[0].ID, matches[1].ID)
	}
	if matches[0].Begin != "2025-06-03T19:37:18.057" {
		t.Errorf("begin = %q", matches[0].Begin)
	}
}

func TestQueryNoMatch(t *testing.T) {
	col := testCollection()

	// Null Island is outside every footprint; empty result, not an error.
	matches := Query(col, Point{Lat: 0, Lon: 0})
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestQueryStrictlyOutside(t *testing.T) {
	col := testCollection()

	matches := Query(col, Point{Lat: 47.5, Lon: -120.9})
	for _, m := range matches {
		if m.ID == "51948-2" {
			t.Error("point east of the rectangle matched it")
		}
	}
}

func TestQueryOrderPreservation(t *testing.T) {
	// A point inside all three rectangles would prove ordering; use a
	// collection of nested rectangles instead.
	col := &Collection{
		Satellite: sentinel.S2B,
		Records: []Record{
			{ID: "c", Geometry: rectangle(-10, -10, 10, 10), Begin: "t3"},
			{ID: "a", Geometry: rectangle(-20, -20, 20, 20), Begin: "t1"},
			{ID: "b", Geometry: rectangle(-30, -30, 30, 30), Begin: "t2"},
		},
	}

	matches := Query(col, Point{Lat: 1, Lon: 1})
	var ids []string
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("match order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryBoundaryDeterminism(t *testing.T) {
	col := testCollection()
	onEdge := Point{Lat: 47.0, Lon: -122.0}

	first := len(Query(col, onEdge))
	for i := 0; i < 100; i++ {
		if got := len(Query(col, onEdge)); got != first {
			t.Fatalf("boundary query result changed between runs: %d vs %d", first, got)
		}
	}
}

func TestQueryMultiPolygon(t *testing.T) {
	col := &Collection{
		Satellite: sentinel.S2C,
		Records: []Record{{
			ID: "mp-1",
			Geometry: orb.MultiPolygon{
				rectangle(0, 0, 1, 1),
				rectangle(10, 10, 11, 11),
			},
			Begin: "2025-06-05T00:00:00.000",
		}},
	}

	if got := Query(col, Point{Lat: 10.5, Lon: 10.5}); len(got) != 1 {
		t.Errorf("expected second part of multi-polygon to match, got %d matches", len(got))
	}
	if got := Query(col, Point{Lat: 5, Lon: 5}); len(got) != 0 {
		t.Errorf("expected gap between parts not to match, got %d matches", len(got))
	}
}
