package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/paulmach/orb"

	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// satHex mirrors satColors for the HTML renderer.
var satHex = map[sentinel.Satellite]string{
	sentinel.S2A: "#e41a1c",
	sentinel.S2B: "#4daf4a",
	sentinel.S2C: "#377eb8",
}

// SaveHTML renders an interactive scatter map of footprint outlines to an
// HTML file. Vertices are downsampled per satellite to keep the page
// responsive.
func SaveHTML(path string, results []pipeline.Result, locations map[string]plan.Point, maxPoints int) error {
	if maxPoints <= 0 {
		maxPoints = 8000
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Sentinel-2 Acquisition Plans",
			Width:     "1200px",
			Height:    "800px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Sentinel-2 Acquisition Plans"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -180, Max: 180, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -90, Max: 90, Name: "Latitude", NameLocation: "middle", NameGap: 30}),
	)

	for _, res := range results {
		if res.Failed() || res.Collection == nil {
			continue
		}
		verts := footprintVertices(res.Collection)
		stride := 1
		if len(verts) > maxPoints {
			stride = int(math.Ceil(float64(len(verts)) / float64(maxPoints)))
		}
		data := make([]opts.ScatterData, 0, len(verts)/stride+1)
		for i := 0; i < len(verts); i += stride {
			data = append(data, opts.ScatterData{Value: []interface{}{verts[i].Lon(), verts[i].Lat()}})
		}
		scatter.AddSeries(res.Satellite.DisplayName(), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: satHex[res.Satellite], Opacity: opts.Float(0.35)}),
		)
	}

	if len(locations) > 0 {
		data := make([]opts.ScatterData, 0, len(locations))
		for name, loc := range locations {
			data = append(data, opts.ScatterData{Name: name, Value: []interface{}{loc.Lon, loc.Lat}})
		}
		scatter.AddSeries("query locations", data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ffffff"}),
		)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html map: %w", err)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render html map: %w", err)
	}
	return nil
}

func footprintVertices(c *plan.Collection) []orb.Point {
	var out []orb.Point
	for i := range c.Records {
		for _, poly := range polygonsOf(c.Records[i].Geometry) {
			if len(poly) == 0 {
				continue
			}
			for _, pt := range poly[0] {
				out = append(out, pt)
			}
		}
	}
	return out
}
