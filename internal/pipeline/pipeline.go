// Package pipeline runs the resolve → fetch → load → query chain for each
// satellite and assembles per-satellite results.
package pipeline

import (
	"sync"

	"github.com/banshee-data/overpass.report/internal/monitoring"
	"github.com/banshee-data/overpass.report/internal/plan"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// Resolver locates the latest plan document for a satellite.
type Resolver interface {
	Resolve(sat sentinel.Satellite) (url, filename string, err error)
}

// Fetcher materialises a plan document locally.
type Fetcher interface {
	Fetch(sat sentinel.Satellite, url, filename string) (string, error)
}

// Loader parses a local plan document.
type Loader interface {
	Load(path string, sat sentinel.Satellite) (*plan.Collection, error)
}

// Result is one satellite's outcome. Exactly one of Err or Collection is
// meaningful: a failed satellite carries its error and an empty match set.
type Result struct {
	Satellite  sentinel.Satellite
	Collection *plan.Collection
	Matches    []plan.Match
	Err        error
}

// Failed reports whether this satellite's pipeline errored.
func (r *Result) Failed() bool { return r.Err != nil }

// Pipeline wires the per-satellite stages together.
type Pipeline struct {
	Resolver Resolver
	Fetcher  Fetcher
	Loader   Loader

	// Concurrent runs the satellites in parallel. The per-satellite
	// pipelines are independent and write to disjoint cache files, so
	// the only shared state is the results slice below.
	Concurrent bool
}

// New returns a sequential Pipeline over the given stages.
func New(r Resolver, f Fetcher, l Loader) *Pipeline {
	return &Pipeline{Resolver: r, Fetcher: f, Loader: l}
}

// Run processes each satellite in order and queries its collection for
// point. One satellite's failure is recorded in its Result and never
// aborts the others. Results are returned in the satellites' given order.
func (p *Pipeline) Run(satellites []sentinel.Satellite, point plan.Point) []Result {
	results := make([]Result, len(satellites))

	if !p.Concurrent {
		for i, sat := range satellites {
			results[i] = p.runOne(sat, point)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, sat := range satellites {
		wg.Add(1)
		go func(i int, sat sentinel.Satellite) {
			defer wg.Done()
			results[i] = p.runOne(sat, point)
		}(i, sat)
	}
	wg.Wait()
	return results
}

// LoadAll materialises every satellite's collection without querying.
// Used by the table exporter, which queries many points per collection.
func (p *Pipeline) LoadAll(satellites []sentinel.Satellite) []Result {
	results := make([]Result, len(satellites))
	for i, sat := range satellites {
		results[i] = p.loadOne(sat)
	}
	return results
}

func (p *Pipeline) runOne(sat sentinel.Satellite, point plan.Point) Result {
	res := p.loadOne(sat)
	if res.Err != nil {
		return res
	}
	res.Matches = plan.Query(res.Collection, point)
	return res
}

func (p *Pipeline) loadOne(sat sentinel.Satellite) Result {
	res := Result{Satellite: sat}

	url, filename, err := p.Resolver.Resolve(sat)
	if err != nil {
		monitoring.Logf("%s: %v", sat, err)
		res.Err = err
		return res
	}

	local, err := p.Fetcher.Fetch(sat, url, filename)
	if err != nil {
		monitoring.Logf("%s: %v", sat, err)
		res.Err = err
		return res
	}

	col, err := p.Loader.Load(local, sat)
	if err != nil {
		monitoring.Logf("%s: %v", sat, err)
		res.Err = err
		return res
	}

	monitoring.Logf("%s: loaded %d plan records", sat, col.Len())
	res.Collection = col
	return res
}
