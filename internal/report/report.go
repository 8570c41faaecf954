// Package report formats query results for the console and for TSV
// table export.
package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/overpass.report/internal/pipeline"
)

// Write prints one section per satellite: a header line, then one
// "id<TAB>begin" line per matching record in document order. A satellite
// with zero matches prints only its header; a failed satellite prints an
// explicit error notice instead.
//
// Sections are written whole, so callers running satellites concurrently
// get unmixed per-satellite output as long as they pass the assembled
// results here.
func Write(w io.Writer, results []pipeline.Result) error {
	for _, res := range results {
		name := res.Satellite.DisplayName()
		if res.Failed() {
			if _, err := fmt.Fprintf(w, "%s: error: %v\n", name, res.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
			return err
		}
		for _, m := range res.Matches {
			if _, err := fmt.Fprintf(w, "  %s\t%s\n", m.ID, m.Begin); err != nil {
				return err
			}
		}
	}
	return nil
}
