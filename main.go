// Command overpass-report answers "which planned Sentinel-2 acquisitions
// cover this point, and when?". It resolves the latest KML acquisition
// plan for each platform, caches it locally, queries the footprints for
// the requested location and renders all plans on a shared map.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/overpass.report/internal/config"
	"github.com/banshee-data/overpass.report/internal/fetch"
	"github.com/banshee-data/overpass.report/internal/fsutil"
	"github.com/banshee-data/overpass.report/internal/pipeline"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/render"
	"github.com/banshee-data/overpass.report/internal/report"
	"github.com/banshee-data/overpass.report/internal/source"
	"github.com/banshee-data/overpass.report/internal/store"
	"github.com/banshee-data/overpass.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "path to JSON config file")
	lat         = flag.Float64("lat", 47.6062, "query latitude")
	lon         = flag.Float64("lon", -122.3321, "query longitude")
	locName     = flag.String("location", "Seattle, WA", "query location label")
	cacheDir    = flag.String("cache", "", "KML cache directory (overrides config)")
	outDir      = flag.String("out", "", "output directory for rendered maps (overrides config)")
	dbPath      = flag.String("db", "", "query-run archive database path (overrides config)")
	plotName    = flag.String("plot", "acquisition_plans.png", "PNG map filename, empty to skip")
	htmlName    = flag.String("html", "", "HTML map filename, empty to skip")
	concurrent  = flag.Bool("concurrent", false, "run per-satellite pipelines in parallel")
	history     = flag.Int("history", 0, "print the N most recent archived runs and exit")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("overpass-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *cacheDir == "" {
		*cacheDir = cfg.GetCacheDir()
	}
	if *outDir == "" {
		*outDir = cfg.GetOutputDir()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	archive, err := store.Open(*dbPath, nil)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	if *history > 0 {
		printHistory(archive, *history)
		return
	}

	satellites, err := cfg.GetSatellites()
	if err != nil {
		log.Fatalf("config satellites: %v", err)
	}

	resolver := source.NewResolver(nil)
	resolver.PlansURL = cfg.GetPlansURL()
	resolver.BaseURL = cfg.GetBaseURL()
	fetcher := fetch.NewFetcher(nil, nil, *cacheDir)
	loader := plan.NewLoader(fsutil.OSFileSystem{})

	p := pipeline.New(resolver, fetcher, loader)
	p.Concurrent = *concurrent || cfg.GetConcurrent()

	point := plan.Point{Lat: *lat, Lon: *lon}
	log.Printf("querying acquisition plans for %s (%.4f, %.4f)", *locName, *lat, *lon)
	results := p.Run(satellites, point)

	if err := report.Write(os.Stdout, results); err != nil {
		log.Fatalf("write report: %v", err)
	}

	runID, err := archive.RecordRun(*locName, point, results)
	if err != nil {
		log.Printf("archive run: %v", err)
	} else {
		log.Printf("archived run %s", runID)
	}

	locations := map[string]plan.Point{*locName: point}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	if *plotName != "" {
		path := filepath.Join(*outDir, *plotName)
		if err := render.SavePNG(path, results, locations); err != nil {
			log.Printf("render map: %v", err)
		} else {
			log.Printf("wrote map to %s", path)
		}
	}
	if *htmlName != "" {
		path := filepath.Join(*outDir, *htmlName)
		if err := render.SaveHTML(path, results, locations, 0); err != nil {
			log.Printf("render html map: %v", err)
		} else {
			log.Printf("wrote html map to %s", path)
		}
	}
}

func printHistory(archive *store.Store, n int) {
	runs, err := archive.RecentRuns(n)
	if err != nil {
		log.Fatalf("read archive: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  (%.4f, %.4f)  %d matches, %d errors  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.RunID, r.Lat, r.Lon, r.Matches, r.Errors, r.Location)
	}
}
