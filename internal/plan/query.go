package plan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is an immutable query location.
type Point struct {
	Lat float64
	Lon float64
}

// Match is one record whose footprint contains the query point.
type Match struct {
	ID    string
	Begin string
	// Record points back into the collection for table export and
	// rendering; it is read-only.
	Record *Record
}

// Query returns the records whose geometry contains p, preserving the
// collection's document order. Zero matches is a valid empty result, not
// an error. Boundary behavior follows orb's planar containment test and
// is consistent across repeated calls.
func Query(c *Collection, p Point) []Match {
	pt := orb.Point{p.Lon, p.Lat}
	var out []Match
	for i := range c.Records {
		rec := &c.Records[i]
		if contains(rec.Geometry, pt) {
			out = append(out, Match{ID: rec.ID, Begin: rec.Begin, Record: rec})
		}
	}
	return out
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	}
	return false
}
