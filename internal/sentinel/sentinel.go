// Package sentinel defines the Sentinel-2 platforms the acquisition-plan
// pipeline knows about.
package sentinel

import "fmt"

// Satellite identifies one Sentinel-2 platform.
type Satellite string

const (
	S2A Satellite = "S2A"
	S2B Satellite = "S2B"
	S2C Satellite = "S2C"
)

// All lists the configured platforms in their fixed processing and
// reporting order.
func All() []Satellite {
	return []Satellite{S2A, S2B, S2C}
}

// DisplayName returns the human-readable platform name as it appears on
// the Copernicus acquisition-plans page.
func (s Satellite) DisplayName() string {
	switch s {
	case S2A:
		return "Sentinel-2A"
	case S2B:
		return "Sentinel-2B"
	case S2C:
		return "Sentinel-2C"
	}
	return string(s)
}

// CacheName returns the deterministic cache filename for this platform's
// plan document.
func (s Satellite) CacheName() string {
	return string(s) + ".kml"
}

// Parse converts a short identifier or display name into a Satellite.
func Parse(s string) (Satellite, error) {
	for _, sat := range All() {
		if s == string(sat) || s == sat.DisplayName() {
			return sat, nil
		}
	}
	return "", fmt.Errorf("unknown satellite %q", s)
}
