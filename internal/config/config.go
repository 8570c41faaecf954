// Package config loads the pipeline configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/overpass.report/internal/sentinel"
	"github.com/banshee-data/overpass.report/internal/source"
)

// Location is one named query point. Output, when set, names the TSV file
// the plan-table tool writes for this location.
type Location struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Output string  `json:"output,omitempty"`
}

// Config holds the pipeline settings. All fields are optional in the JSON
// file; getters supply defaults, so partial configs are safe.
type Config struct {
	PlansURL   *string    `json:"plans_url,omitempty"`
	BaseURL    *string    `json:"base_url,omitempty"`
	CacheDir   *string    `json:"cache_dir,omitempty"`
	OutputDir  *string    `json:"output_dir,omitempty"`
	DBPath     *string    `json:"db_path,omitempty"`
	Satellites []string   `json:"satellites,omitempty"`
	Locations  []Location `json:"locations,omitempty"`
	Concurrent *bool      `json:"concurrent,omitempty"`
}

// Default returns a Config with no overrides set.
func Default() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The path must have a .json
// extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// GetPlansURL returns the acquisition-plans page URL.
func (c *Config) GetPlansURL() string {
	if c.PlansURL != nil {
		return *c.PlansURL
	}
	return source.DefaultPlansURL
}

// GetBaseURL returns the document download prefix.
func (c *Config) GetBaseURL() string {
	if c.BaseURL != nil {
		return *c.BaseURL
	}
	return source.DefaultBaseURL
}

// GetCacheDir returns the KML cache directory.
func (c *Config) GetCacheDir() string {
	if c.CacheDir != nil {
		return *c.CacheDir
	}
	return "sentinel_kml_data"
}

// GetOutputDir returns the directory for rendered maps and tables.
func (c *Config) GetOutputDir() string {
	if c.OutputDir != nil {
		return *c.OutputDir
	}
	return c.GetCacheDir()
}

// GetDBPath returns the query-run archive database path.
func (c *Config) GetDBPath() string {
	if c.DBPath != nil {
		return *c.DBPath
	}
	return "acquisition_plans.db"
}

// GetConcurrent reports whether per-satellite pipelines run in parallel.
func (c *Config) GetConcurrent() bool {
	if c.Concurrent != nil {
		return *c.Concurrent
	}
	return false
}

// GetSatellites returns the configured platforms in processing order,
// defaulting to all three.
func (c *Config) GetSatellites() ([]sentinel.Satellite, error) {
	if len(c.Satellites) == 0 {
		return sentinel.All(), nil
	}
	out := make([]sentinel.Satellite, 0, len(c.Satellites))
	for _, s := range c.Satellites {
		sat, err := sentinel.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sat)
	}
	return out, nil
}
