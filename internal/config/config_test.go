package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/overpass.report/internal/sentinel"
	"github.com/banshee-data/overpass.report/internal/source"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.GetPlansURL() != source.DefaultPlansURL {
		t.Errorf("GetPlansURL() = %q", cfg.GetPlansURL())
	}
	if cfg.GetBaseURL() != source.DefaultBaseURL {
		t.Errorf("GetBaseURL() = %q", cfg.GetBaseURL())
	}
	if cfg.GetCacheDir() != "sentinel_kml_data" {
		t.Errorf("GetCacheDir() = %q", cfg.GetCacheDir())
	}
	if cfg.GetOutputDir() != cfg.GetCacheDir() {
		t.Errorf("GetOutputDir() = %q, want cache dir", cfg.GetOutputDir())
	}
	if cfg.GetDBPath() != "acquisition_plans.db" {
		t.Errorf("GetDBPath() = %q", cfg.GetDBPath())
	}
	if cfg.GetConcurrent() {
		t.Error("GetConcurrent() = true, want false by default")
	}

	sats, err := cfg.GetSatellites()
	if err != nil {
		t.Fatalf("GetSatellites failed: %v", err)
	}
	if len(sats) != 3 {
		t.Errorf("expected 3 default satellites, got %d", len(sats))
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "plans_url": "https://example.com/plans",
  "cache_dir": "/tmp/kml",
  "satellites": ["S2A", "S2C"],
  "concurrent": true,
  "locations": [
    {"name": "Seattle, WA", "lat": 47.6062, "lon": -122.3321, "output": "sea.tsv"}
  ]
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetPlansURL() != "https://example.com/plans" {
		t.Errorf("GetPlansURL() = %q", cfg.GetPlansURL())
	}
	if cfg.GetBaseURL() != source.DefaultBaseURL {
		t.Errorf("omitted base_url should keep default, got %q", cfg.GetBaseURL())
	}
	if cfg.GetCacheDir() != "/tmp/kml" {
		t.Errorf("GetCacheDir() = %q", cfg.GetCacheDir())
	}
	if !cfg.GetConcurrent() {
		t.Error("GetConcurrent() = false, want true")
	}

	sats, err := cfg.GetSatellites()
	if err != nil {
		t.Fatalf("GetSatellites failed: %v", err)
	}
	if len(sats) != 2 || sats[0] != sentinel.S2A || sats[1] != sentinel.S2C {
		t.Errorf("satellites = %v", sats)
	}
	if len(cfg.Locations) != 1 || cfg.Locations[0].Output != "sea.tsv" {
		t.Errorf("locations = %+v", cfg.Locations)
	}
}

func TestLoadRejectsNonJSON(t *testing.T) {
	if _, err := Load("config.yaml"); err == nil {
		t.Error("expected error for non-json extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetSatellitesRejectsUnknown(t *testing.T) {
	cfg := &Config{Satellites: []string{"S2X"}}
	if _, err := cfg.GetSatellites(); err == nil {
		t.Error("expected error for unknown satellite")
	}
}
