// Command plan-fetch resolves and downloads the latest acquisition-plan
// document for every configured satellite, warming the local KML cache.
// With -force, cached documents are invalidated and re-downloaded.
package main

import (
	"flag"
	"log"

	"github.com/banshee-data/overpass.report/internal/config"
	"github.com/banshee-data/overpass.report/internal/fetch"
	"github.com/banshee-data/overpass.report/internal/source"
)

func main() {
	var configPath string
	var cacheDir string
	var force bool

	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.StringVar(&cacheDir, "cache", "", "KML cache directory (overrides config)")
	flag.BoolVar(&force, "force", false, "re-download even if cached")
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

	satellites, err := cfg.GetSatellites()
	if err != nil {
		log.Fatalf("config satellites: %v", err)
	}

	resolver := source.NewResolver(nil)
	resolver.PlansURL = cfg.GetPlansURL()
	resolver.BaseURL = cfg.GetBaseURL()
	fetcher := fetch.NewFetcher(nil, nil, cacheDir)

	failures := 0
	for _, sat := range satellites {
		url, filename, err := resolver.Resolve(sat)
		if err != nil {
			log.Printf("%v", err)
			failures++
			continue
		}
		if force {
			if err := fetcher.Invalidate(sat, filename); err != nil {
				log.Printf("%s: invalidate cache: %v", sat, err)
			}
		}
		local, err := fetcher.Fetch(sat, url, filename)
		if err != nil {
			log.Printf("%v", err)
			failures++
			continue
		}
		log.Printf("%s: %s", sat, local)
	}
	if failures > 0 {
		log.Fatalf("%d satellite(s) failed", failures)
	}
}
