package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/banshee-data/overpass.report/internal/plan"
)

// TableColumns is the fixed column order of exported acquisition tables.
var TableColumns = []string{
	"Polygon",
	"ID",
	"TimeSpan.begin",
	"TimeSpan.end",
	"OrbitAbsolute",
	"OrbitRelative",
	"Scenes",
	"id",
	"Name",
	"timestamp",
	"icon",
	"Timeliness",
	"Station",
	"Mode",
	"ObservationTimeStart",
	"ObservationTimeStop",
	"ObservationDuration",
	"layer",
}

// beginLayout matches the documents' ISO-8601 begin timestamps; the
// fractional seconds are accepted implicitly by time.Parse.
const beginLayout = "2006-01-02T15:04:05"

// WriteTable writes the matches from all satellites as one TSV table,
// sorted by begin timestamp. Rows whose timestamp does not parse sort
// last, in their original order.
func WriteTable(w io.Writer, matches []plan.Match) error {
	rows := make([]plan.Match, len(matches))
	copy(rows, matches)
	sort.SliceStable(rows, func(i, j int) bool {
		ti, iok := parseBegin(rows[i].Begin)
		tj, jok := parseBegin(rows[j].Begin)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.Before(tj)
	})

	if _, err := fmt.Fprintln(w, strings.Join(TableColumns, "\t")); err != nil {
		return err
	}
	for _, m := range rows {
		cells := make([]string, len(TableColumns))
		for i, col := range TableColumns {
			cells[i] = sanitizeCell(cellValue(m.Record, col))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(rec *plan.Record, col string) string {
	switch col {
	case "Polygon":
		return wkt.MarshalString(rec.Geometry)
	case "Name":
		return rec.ID
	case "id":
		// Prefer the ExtendedData ID when present, like the name
		// fallback the loader applies.
		if v := rec.Meta["ID"]; v != "" {
			return v
		}
		return rec.ID
	case "TimeSpan.begin":
		return rec.Begin
	case "TimeSpan.end":
		return rec.End
	case "layer":
		return string(rec.Satellite)
	default:
		return rec.Meta[col]
	}
}

// sanitizeCell collapses runs of whitespace so multi-line document values
// cannot break the TSV framing.
func sanitizeCell(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func parseBegin(s string) (time.Time, bool) {
	t, err := time.Parse(beginLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
