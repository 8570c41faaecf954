// Package kml parses KML acquisition-plan documents into a document tree.
//
// The parser deliberately reads the whole document in one pass: a feature's
// geometry and its TimeSpan metadata come from the same Placemark element,
// so there is no positional re-association between separate parses.
package kml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"encoding/xml"

	"github.com/paulmach/orb"
)

// Document is the root of a parsed KML file.
type Document struct {
	Name    string   `xml:"Document>name"`
	Folders []Folder `xml:"Document>Folder"`
}

// Folder is a named layer of placemarks. Acquisition-plan documents use one
// folder per planning variant (NOMINAL, REGULAR, ...).
type Folder struct {
	Name       string      `xml:"name"`
	Folders    []Folder    `xml:"Folder"`
	Placemarks []Placemark `xml:"Placemark"`
}

// Placemark is one feature: a named geometry with optional time span and
// extended metadata.
type Placemark struct {
	Name          string         `xml:"name"`
	TimeSpan      TimeSpan       `xml:"TimeSpan"`
	StyleURL      string         `xml:"styleUrl"`
	ExtendedData  []Data         `xml:"ExtendedData>Data"`
	Polygon       *Polygon       `xml:"Polygon"`
	MultiGeometry *MultiGeometry `xml:"MultiGeometry"`
}

// TimeSpan carries the feature's begin/end timestamps as the verbatim
// ISO-8601 strings from the document.
type TimeSpan struct {
	Begin string `xml:"begin"`
	End   string `xml:"end"`
}

// Data is one ExtendedData entry.
type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// Polygon holds the outer boundary ring of a KML polygon. Inner boundaries
// (holes) do not occur in acquisition plans but are parsed when present.
type Polygon struct {
	Outer Boundary   `xml:"outerBoundaryIs"`
	Inner []Boundary `xml:"innerBoundaryIs"`
}

// MultiGeometry groups several polygons under one placemark.
type MultiGeometry struct {
	Polygons []Polygon `xml:"Polygon"`
}

// Boundary wraps a LinearRing coordinate string.
type Boundary struct {
	Coordinates string `xml:"LinearRing>coordinates"`
}

// Parse reads a KML document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode kml: %w", err)
	}
	return &doc, nil
}

// Layers returns the document's folders flattened in document order,
// recursing into nested folders.
func (d *Document) Layers() []Folder {
	var out []Folder
	var walk func(fs []Folder)
	walk = func(fs []Folder) {
		for _, f := range fs {
			out = append(out, f)
			walk(f.Folders)
		}
	}
	walk(d.Folders)
	return out
}

// Value returns the ExtendedData entry with the given name, or "".
func (p *Placemark) Value(name string) string {
	for _, d := range p.ExtendedData {
		if d.Name == name {
			return strings.TrimSpace(d.Value)
		}
	}
	return ""
}

// Geometry converts the placemark's polygon(s) into an orb geometry in
// lon/lat order. It returns nil when the placemark has no usable polygon.
func (p *Placemark) Geometry() (orb.Geometry, error) {
	switch {
	case p.MultiGeometry != nil && len(p.MultiGeometry.Polygons) > 0:
		mp := make(orb.MultiPolygon, 0, len(p.MultiGeometry.Polygons))
		for _, poly := range p.MultiGeometry.Polygons {
			op, err := poly.orbPolygon()
			if err != nil {
				return nil, err
			}
			mp = append(mp, op)
		}
		return mp, nil
	case p.Polygon != nil:
		op, err := p.Polygon.orbPolygon()
		if err != nil {
			return nil, err
		}
		return op, nil
	}
	return nil, nil
}

func (poly *Polygon) orbPolygon() (orb.Polygon, error) {
	outer, err := parseRing(poly.Outer.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("outer boundary: %w", err)
	}
	rings := orb.Polygon{outer}
	for _, b := range poly.Inner {
		ring, err := parseRing(b.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("inner boundary: %w", err)
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// parseRing parses a KML coordinate string: whitespace-separated
// "lon,lat[,alt]" tuples. Altitude is discarded.
func parseRing(coords string) (orb.Ring, error) {
	fields := strings.Fields(coords)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty coordinate list")
	}
	ring := make(orb.Ring, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate tuple %q", f)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse latitude %q: %w", parts[1], err)
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	// KML rings repeat the first point at the end; orb expects closed
	// rings too, so close the ring if the document left it open.
	if len(ring) > 1 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, nil
}
