package plan

import (
	"bytes"
	"strings"

	"github.com/banshee-data/overpass.report/internal/fsutil"
	"github.com/banshee-data/overpass.report/internal/kml"
	"github.com/banshee-data/overpass.report/internal/monitoring"
	"github.com/banshee-data/overpass.report/internal/sentinel"
)

// nominalPrefix selects the operational layers of a plan document. Other
// layers (calibration, planning variants) mix geometry types and duplicate
// footprints, so they are skipped outright.
const nominalPrefix = "NOMINAL"

// extendedFields are the ExtendedData entries carried onto each record
// when the document provides them.
var extendedFields = []string{
	"ID", "Timeliness", "Station", "Mode",
	"ObservationTimeStart", "ObservationTimeStop", "ObservationDuration",
	"OrbitAbsolute", "OrbitRelative", "Scenes", "timestamp",
}

// Loader reads plan documents from a filesystem.
type Loader struct {
	FS fsutil.FileSystem
}

// NewLoader returns a Loader reading through fs. A nil fs uses the OS
// filesystem.
func NewLoader(fs fsutil.FileSystem) *Loader {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Loader{FS: fs}
}

// Load parses the KML document at path into sat's plan collection.
//
// Only NOMINAL* layers contribute records. Geometry and the TimeSpan begin
// timestamp come from the same placemark element; a placemark missing
// either is dropped rather than emitted with null fields. The whole
// document fails with a MalformedDocumentError when it cannot be parsed,
// has no NOMINAL layer, or yields no valid record.
func (l *Loader) Load(path string, sat sentinel.Satellite) (*Collection, error) {
	raw, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, &MalformedDocumentError{Path: path, Reason: "read", Err: err}
	}

	doc, err := kml.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &MalformedDocumentError{Path: path, Reason: "parse", Err: err}
	}

	col := &Collection{Satellite: sat}
	sawNominal := false
	dropped := 0
	for _, layer := range doc.Layers() {
		if !strings.HasPrefix(layer.Name, nominalPrefix) {
			continue
		}
		sawNominal = true
		for i := range layer.Placemarks {
			pm := &layer.Placemarks[i]
			rec, ok := recordFromPlacemark(pm, sat)
			if !ok {
				dropped++
				continue
			}
			col.Records = append(col.Records, rec)
		}
	}

	if !sawNominal {
		return nil, &MalformedDocumentError{Path: path, Reason: "no NOMINAL layer"}
	}
	if len(col.Records) == 0 {
		return nil, &MalformedDocumentError{Path: path, Reason: "no valid records in NOMINAL layer"}
	}
	if dropped > 0 {
		monitoring.Logf("%s: dropped %d placemark(s) missing geometry or begin timestamp", sat, dropped)
	}
	return col, nil
}

func recordFromPlacemark(pm *kml.Placemark, sat sentinel.Satellite) (Record, bool) {
	geom, err := pm.Geometry()
	if err != nil || geom == nil {
		return Record{}, false
	}
	begin := strings.TrimSpace(pm.TimeSpan.Begin)
	if begin == "" {
		return Record{}, false
	}

	id := strings.TrimSpace(pm.Name)
	if v := pm.Value("ID"); id == "" && v != "" {
		id = v
	}
	if id == "" {
		return Record{}, false
	}

	meta := make(map[string]string)
	for _, f := range extendedFields {
		if v := pm.Value(f); v != "" {
			meta[f] = v
		}
	}
	if pm.StyleURL != "" {
		meta["icon"] = strings.TrimSpace(pm.StyleURL)
	}
	// The documents' standalone timestamp field is sparse; fall back to
	// the span begin so the table output always has one.
	if meta["timestamp"] == "" {
		meta["timestamp"] = begin
	}

	return Record{
		ID:        id,
		Geometry:  geom,
		Begin:     begin,
		End:       strings.TrimSpace(pm.TimeSpan.End),
		Satellite: sat,
		Meta:      meta,
	}, true
}
