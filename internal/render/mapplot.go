// Package render draws all satellites' plan footprints on a shared map
// canvas, one color per satellite, with the query locations marked.
package render

import (
	"fmt"
	"image/color"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// satColors assigns each platform its map color. Alpha is low so the
// many overlapping swaths stay readable.
var satColors = map[sentinel.Satellite]color.NRGBA{
	sentinel.S2A: {R: 228, G: 26, B: 28, A: 48},
	sentinel.S2B: {R: 77, G: 175, B: 74, A: 48},
	sentinel.S2C: {R: 55, G: 126, B: 184, A: 48},
}

// SavePNG renders every successful satellite's footprints and the query
// locations to a PNG map at path. Failed satellites are simply absent.
func SavePNG(path string, results []pipeline.Result, locations map[string]plan.Point) error {
	p := plot.New()
	p.Title.Text = "Sentinel-2 Acquisition Plans"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90

	for _, res := range results {
		if res.Failed() || res.Collection == nil {
			continue
		}
		col := satColors[res.Satellite]
		first := true
		for i := range res.Collection.Records {
			rec := &res.Collection.Records[i]
			for _, poly := range polygonsOf(rec.Geometry) {
				shape, err := newPolygon(poly)
				if err != nil {
					return fmt.Errorf("polygon for %s/%s: %w", res.Satellite, rec.ID, err)
				}
				shape.Color = col
				shape.LineStyle.Color = color.NRGBA{A: 96}
				shape.LineStyle.Width = vg.Points(0.25)
				p.Add(shape)
				if first {
					p.Legend.Add(res.Satellite.DisplayName(), shape)
					first = false
				}
			}
		}
	}

	if len(locations) > 0 {
		pts := make(plotter.XYs, 0, len(locations))
		for _, loc := range locations {
			pts = append(pts, plotter.XY{X: loc.Lon, Y: loc.Lat})
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("location markers: %w", err)
		}
		scatter.GlyphStyle.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	return nil
}

func newPolygon(poly orb.Polygon) (*plotter.Polygon, error) {
	if len(poly) == 0 {
		return nil, fmt.Errorf("empty polygon")
	}
	// Only the outer ring is drawn; acquisition footprints have no holes.
	ring := poly[0]
	xys := make(plotter.XYs, 0, len(ring))
	for _, pt := range ring {
		xys = append(xys, plotter.XY{X: pt.Lon(), Y: pt.Lat()})
	}
	return plotter.NewPolygon(xys)
}

func polygonsOf(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return geom
	}
	return nil
}
