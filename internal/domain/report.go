package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sourceOfficeRe matches a 3-5 letter NWS office code in parentheses at the
// end of a comment, e.g. "Quarter hail reported. (FWD)" -> "FWD".
var sourceOfficeRe = regexp.MustCompile(`\(([A-Z]{3,5})\)\s*$`)

// ReportKind labels the three SPC report CSVs.
type ReportKind string

const (
	ReportTornado ReportKind = "tornado"
	ReportHail    ReportKind = "hail"
	ReportWind    ReportKind = "wind"
)

// Map thresholds for the emphasized report categories: hail two inches and
// larger, wind gusts 65 mph and stronger.
const (
	LargeHailInches = 2.0
	HighWindMPH     = 65.0
)

// ReportCategory is the legend grouping a report plots under.
type ReportCategory string

const (
	CategoryTornado   ReportCategory = "tornado"
	CategoryHail      ReportCategory = "hail"
	CategoryLargeHail ReportCategory = "large hail"
	CategoryWind      ReportCategory = "wind"
	CategoryHighWind  ReportCategory = "high wind"
)

// StormReport is one parsed SPC local storm report row.
type StormReport struct {
	Kind ReportKind
	Time time.Time // UTC, HHMM column combined with the convective day

	// RawTime and RawMagnitude preserve the original CSV column text; the
	// Kafka wire format re-emits them verbatim.
	RawTime      string
	RawMagnitude string

	// Magnitude is hail size in inches, wind speed in mph, or tornado EF
	// rating. Meaningless when MagnitudeKnown is false ("UNK" or blank).
	Magnitude      float64
	MagnitudeKnown bool

	Location     string
	County       string
	State        string
	Lat          float64
	Lon          float64
	Comments     string
	SourceOffice string
}

// RawReportRow holds the raw CSV columns of one SPC report before parsing.
// The magnitude column is Size, F_Scale, or Speed depending on the file.
type RawReportRow struct {
	Time      string
	Magnitude string
	Location  string
	County    string
	State     string
	Lat       string
	Lon       string
	Comments  string
}

// ParseReport converts a raw CSV row into a StormReport. The base date is the
// convective day from the CSV filename. Rows without usable coordinates are
// rejected; everything else is tolerated per SPC conventions.
func ParseReport(kind ReportKind, baseDate time.Time, raw RawReportRow) (StormReport, error) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(raw.Lat), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(raw.Lon), 64)
	if errLat != nil || errLon != nil {
		return StormReport{}, fmt.Errorf("report row: bad coordinates %q,%q", raw.Lat, raw.Lon)
	}

	magnitude, known := parseMagnitude(kind, raw.Magnitude)

	return StormReport{
		Kind:           kind,
		Time:           combineHHMM(baseDate, raw.Time),
		RawTime:        strings.TrimSpace(raw.Time),
		RawMagnitude:   strings.TrimSpace(raw.Magnitude),
		Magnitude:      magnitude,
		MagnitudeKnown: known,
		Location:       strings.TrimSpace(raw.Location),
		County:         strings.TrimSpace(raw.County),
		State:          strings.TrimSpace(raw.State),
		Lat:            lat,
		Lon:            lon,
		Comments:       strings.TrimSpace(raw.Comments),
		SourceOffice:   ExtractSourceOffice(raw.Comments),
	}, nil
}

// parseMagnitude parses the kind-specific magnitude column. "UNK" and blank
// mark the magnitude unknown. Tornado ratings may carry an EF/F prefix. Hail
// sizes ≥ 10 are hundredths of inches and are converted to inches.
func parseMagnitude(kind ReportKind, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "UNK") {
		return 0, false
	}
	if kind == ReportTornado {
		raw = strings.TrimPrefix(raw, "EF")
		raw = strings.TrimPrefix(raw, "F")
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if kind == ReportHail && v >= 10 {
		v /= 100.0
	}
	return v, true
}

// combineHHMM combines a base date with an HHMM time string (e.g. "1510" →
// 15:10 UTC). Unparseable times fall back to the base date.
func combineHHMM(baseDate time.Time, hhmm string) time.Time {
	hhmm = strings.TrimSpace(hhmm)
	if len(hhmm) < 3 {
		return baseDate
	}
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return baseDate
	}

	return time.Date(
		baseDate.Year(), baseDate.Month(), baseDate.Day(),
		hour, mins, 0, 0, time.UTC,
	)
}

// ExtractSourceOffice pulls the NWS Weather Forecast Office (WFO) code from
// the end of a comment string, e.g. "Large hail reported. (OUN)" -> "OUN".
func ExtractSourceOffice(comments string) string {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return ""
	}

	matches := sourceOfficeRe.FindStringSubmatch(comments)
	if len(matches) == 2 {
		return matches[1]
	}

	return ""
}

// Category returns the legend grouping, promoting hail and wind reports that
// clear the emphasis thresholds.
func (r StormReport) Category() ReportCategory {
	switch r.Kind {
	case ReportHail:
		if r.MagnitudeKnown && r.Magnitude >= LargeHailInches {
			return CategoryLargeHail
		}
		return CategoryHail
	case ReportWind:
		if r.MagnitudeKnown && r.Magnitude >= HighWindMPH {
			return CategoryHighWind
		}
		return CategoryWind
	default:
		return CategoryTornado
	}
}

// ID produces a deterministic identifier from the report's key fields,
// prefixed with the kind. Reprocessing the same CSV row yields the same ID,
// which keeps downstream Kafka consumers replay-safe.
func (r StormReport) ID() string {
	input := fmt.Sprintf("%s|%s|%.4f|%.4f|%s|%s",
		r.Kind, r.State, r.Lat, r.Lon, r.RawTime, r.RawMagnitude)
	hash := sha256.Sum256([]byte(input))
	return string(r.Kind) + "-" + hex.EncodeToString(hash[:8])
}

// RawCSVRecord is the flat JSON wire format the storm-data collector family
// publishes: the CSV columns verbatim plus an injected Type field. Exactly one
// of Size, F_Scale, and Speed is set, matching the source file.
type RawCSVRecord struct {
	Time     string `json:"Time"`
	Size     string `json:"Size,omitempty"`    // hail magnitude (hundredths of inches)
	FScale   string `json:"F_Scale,omitempty"` // tornado magnitude (EF scale)
	Speed    string `json:"Speed,omitempty"`   // wind magnitude (mph)
	Location string `json:"Location"`
	County   string `json:"County"`
	State    string `json:"State"`
	Lat      string `json:"Lat"`
	Lon      string `json:"Lon"`
	Comments string `json:"Comments"`
	Type     string `json:"Type"` // "hail", "wind", or "tornado"
}

// Wire converts the report to its Kafka wire format, re-emitting the original
// column text.
func (r StormReport) Wire() RawCSVRecord {
	rec := RawCSVRecord{
		Time:     r.RawTime,
		Location: r.Location,
		County:   r.County,
		State:    r.State,
		Lat:      strconv.FormatFloat(r.Lat, 'f', 2, 64),
		Lon:      strconv.FormatFloat(r.Lon, 'f', 2, 64),
		Comments: r.Comments,
		Type:     string(r.Kind),
	}
	switch r.Kind {
	case ReportHail:
		rec.Size = r.RawMagnitude
	case ReportTornado:
		rec.FScale = r.RawMagnitude
	case ReportWind:
		rec.Speed = r.RawMagnitude
	}
	return rec
}
