package domain

import "time"

// Point is a lon/lat coordinate pair in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Ring is one polygon ring of lon/lat vertices. Rings are kept as served;
// renderers close them when drawing.
type Ring []Point

// Warning is one storm-based warning polygon from the IEM Cow API.
type Warning struct {
	WFO          string
	Phenomena    string // two-letter VTEC code: TO, SV, FF, MA, DS
	Significance string
	EventID      int
	Issue        time.Time
	Expire       time.Time
	Status       string
	Forecaster   string
	AreaSqKm     float64
	UGCName      string
	StormReports int
	Verified     bool

	// Outline holds the outer ring of each polygon part. MultiPolygon
	// warnings contribute one ring per part.
	Outline []Ring
}

// PhenomenaName expands the VTEC phenomena codes carried on warnings.
func PhenomenaName(code string) string {
	switch code {
	case "TO":
		return "Tornado Warning"
	case "SV":
		return "Severe Thunderstorm Warning"
	case "FF":
		return "Flash Flood Warning"
	case "MA":
		return "Marine Warning"
	case "DS":
		return "Dust Storm Warning"
	default:
		return code
	}
}
