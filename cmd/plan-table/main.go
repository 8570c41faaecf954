// Command plan-table exports, for each configured query location, a TSV
// table of the acquisition segments covering it across all satellites,
// sorted by begin timestamp.
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/overpass.report/internal/config"
	"github.com/banshee-data/overpass.report/internal/fetch"
	"github.com/banshee-data/overpass.report/internal/fsutil"
	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/report"
	"github.com/banshee-data/overpass.report/internal/source"
)

func main() {
	var configPath string
	var cacheDir string
	var outDir string

	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.StringVar(&cacheDir, "cache", "", "KML cache directory (overrides config)")
	flag.StringVar(&outDir, "out", "", "table output directory (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if cacheDir == "" {
		cacheDir = cfg.GetCacheDir()
	}
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}

	locations := cfg.Locations
	if len(locations) == 0 {
		locations = []config.Location{
			{Name: "Seattle, WA", Lat: 47.6062, Lon: -122.3321, Output: "sea.tsv"},
			{Name: "New York, NY", Lat: 40.7143, Lon: -74.0060, Output: "jfk.tsv"},
			{Name: "Chicago, IL", Lat: 41.8500, Lon: -87.6500, Output: "ord.tsv"},
		}
	}

	satellites, err := cfg.GetSatellites()
	if err != nil {
		log.Fatalf("config satellites: %v", err)
	}

	resolver := source.NewResolver(nil)
	resolver.PlansURL = cfg.GetPlansURL()
	resolver.BaseURL = cfg.GetBaseURL()
	fetcher := fetch.NewFetcher(nil, nil, cacheDir)
	loader := plan.NewLoader(fsutil.OSFileSystem{})

	p := pipeline.New(resolver, fetcher, loader)
	results := p.LoadAll(satellites)
	for _, res := range results {
		if res.Failed() {
			log.Printf("%s: %v", res.Satellite, res.Err)
		}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	for _, loc := range locations {
		point := plan.Point{Lat: loc.Lat, Lon: loc.Lon}
		log.Printf("processing acquisition plans for %s (%.4f, %.4f)", loc.Name, loc.Lat, loc.Lon)

		var matches []plan.Match
		for _, res := range results {
			if res.Failed() {
				continue
			}
			matches = append(matches, plan.Query(res.Collection, point)...)
		}
		if len(matches) == 0 {
			log.Printf("  no acquisition plan covers this location")
			continue
		}

		output := loc.Output
		if output == "" {
			output = slugify(loc.Name) + ".tsv"
		}

		var buf bytes.Buffer
		if err := report.WriteTable(&buf, matches); err != nil {
			log.Fatalf("build table for %s: %v", loc.Name, err)
		}
		path := filepath.Join(outDir, output)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("  wrote %d rows to %s", len(matches), path)
	}
}

// slugify builds a filename stem from a location label.
func slugify(name string) string {
	s := strings.ToLower(name)
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == ',' || r == '-':
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "-") {
				sb.WriteRune('-')
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
