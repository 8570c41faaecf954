// Package plan loads Sentinel-2 acquisition-plan documents into queryable
// per-satellite collections and answers point containment queries.
package plan

import (
	"github.com/paulmach/orb"

	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// Record is one acquisition segment from a plan document: a ground-track
// footprint with its begin timestamp and whatever extended metadata the
// document carried.
type Record struct {
	// ID is the segment identifier (orbit-scene, e.g. "51948-2"). Unique
	// within one satellite's document, not across satellites.
	ID string

	// Geometry is the footprint polygon (or multi-polygon) in WGS84
	// lon/lat. Never nil for a loaded record.
	Geometry orb.Geometry

	// Begin is the segment's start timestamp, kept as the verbatim
	// ISO-8601 string from the document (fractional seconds, no zone).
	Begin string

	// End is the segment's end timestamp; may be empty.
	End string

	// Satellite tags which platform the record belongs to.
	Satellite sentinel.Satellite

	// Meta holds the placemark's ExtendedData fields (Timeliness,
	// Station, Mode, OrbitAbsolute, ...) plus the styleUrl under "icon".
	Meta map[string]string
}

// Collection is one satellite's plan snapshot, in document order. It is
// not mutated after loading.
type Collection struct {
	Satellite sentinel.Satellite
	Records   []Record
}

// Len returns the number of records in the collection.
func (c *Collection) Len() int { return len(c.Records) }
