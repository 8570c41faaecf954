// Package fetch downloads plan documents into a per-satellite cache.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/banshee-data/overpass.report/internal/fsutil"
	"github.com/banshee-data/overpass.report/internal/httputil"
	"github.com/banshee-data/overpass.report/internal/monitoring"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// FetchError reports a failed document transfer (network, HTTP status or
// filesystem write).
type FetchError struct {
	Satellite sentinel.Satellite
	URL       string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s plan from %s: %v", e.Satellite, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads KML documents into CacheDir, one file per satellite.
// A file already present at the cache path is never re-downloaded;
// staleness detection is the caller's responsibility.
type Fetcher struct {
	Client   httputil.HTTPClient
	FS       fsutil.FileSystem
	CacheDir string
}

// NewFetcher returns a Fetcher caching into cacheDir. Nil client or fs
// default to their production implementations.
func NewFetcher(client httputil.HTTPClient, fs fsutil.FileSystem, cacheDir string) *Fetcher {
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Fetcher{Client: client, FS: fs, CacheDir: cacheDir}
}

// CachePath returns the deterministic local path for sat's document. The
// resolved filename keys the cache so a new plan release lands in a new
// file; when it is empty the satellite tag is used instead.
func (f *Fetcher) CachePath(sat sentinel.Satellite, filename string) string {
	base := path.Base(filename)
	if base == "." || base == "/" || base == "" {
		base = sat.CacheName()
	}
	if !strings.HasSuffix(strings.ToLower(base), ".kml") {
		base += ".kml"
	}
	return filepath.Join(f.CacheDir, base)
}

// Fetch ensures a local copy of the document at url exists and returns
// its path. The transfer is skipped when the cache file already exists.
func (f *Fetcher) Fetch(sat sentinel.Satellite, url, filename string) (string, error) {
	local := f.CachePath(sat, filename)
	if f.FS.Exists(local) {
		monitoring.Logf("%s: %s already cached, skipping download", sat, local)
		return local, nil
	}

	if err := f.FS.MkdirAll(f.CacheDir, 0755); err != nil {
		return "", &FetchError{Satellite: sat, URL: url, Err: err}
	}

	monitoring.Logf("%s: downloading %s", sat, url)
	resp, err := f.Client.Get(url)
	if err != nil {
		return "", &FetchError{Satellite: sat, URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Satellite: sat, URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Satellite: sat, URL: url, Err: err}
	}
	if err := f.FS.WriteFile(local, data, 0644); err != nil {
		return "", &FetchError{Satellite: sat, URL: url, Err: err}
	}
	monitoring.Logf("%s: wrote %d bytes to %s", sat, len(data), local)
	return local, nil
}

// Invalidate removes sat's cached document so the next Fetch re-downloads
// it. A missing cache file is not an error.
func (f *Fetcher) Invalidate(sat sentinel.Satellite, filename string) error {
	local := f.CachePath(sat, filename)
	if !f.FS.Exists(local) {
		return nil
	}
	return f.FS.Remove(local)
}
