package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

func TestParseReport_Hail(t *testing.T) {
	raw := RawReportRow{
		Time:      "1510",
		Magnitude: "175",
		Location:  "8 ESE Chappel",
		County:    "San Saba",
		State:     "TX",
		Lat:       "31.05",
		Lon:       "-98.42",
		Comments:  "Golf ball sized hail reported. (FWD)",
	}

	r, err := ParseReport(ReportHail, testDay, raw)
	require.NoError(t, err)

	assert.Equal(t, ReportHail, r.Kind)
	assert.Equal(t, time.Date(2023, 6, 15, 15, 10, 0, 0, time.UTC), r.Time)
	assert.True(t, r.MagnitudeKnown)
	assert.InDelta(t, 1.75, r.Magnitude, 1e-9)
	assert.Equal(t, "175", r.RawMagnitude)
	assert.Equal(t, "TX", r.State)
	assert.InDelta(t, 31.05, r.Lat, 1e-9)
	assert.InDelta(t, -98.42, r.Lon, 1e-9)
	assert.Equal(t, "FWD", r.SourceOffice)
}

func TestParseReport_MagnitudeVariants(t *testing.T) {
	tests := []struct {
		name      string
		kind      ReportKind
		raw       string
		want      float64
		wantKnown bool
	}{
		{"hail hundredths", ReportHail, "200", 2.00, true},
		{"hail decimal inches", ReportHail, "1.25", 1.25, true},
		{"hail unknown", ReportHail, "UNK", 0, false},
		{"wind mph", ReportWind, "65", 65, true},
		{"wind unknown lowercase", ReportWind, "unk", 0, false},
		{"wind blank", ReportWind, "", 0, false},
		{"tornado plain", ReportTornado, "2", 2, true},
		{"tornado EF prefix", ReportTornado, "EF3", 3, true},
		{"tornado F prefix", ReportTornado, "F1", 1, true},
		{"tornado unknown", ReportTornado, "UNK", 0, false},
		{"garbage", ReportWind, "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := parseMagnitude(tt.kind, tt.raw)
			assert.Equal(t, tt.wantKnown, known)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseReport_BadCoordinates(t *testing.T) {
	_, err := ParseReport(ReportWind, testDay, RawReportRow{Time: "1200", Lat: "n/a", Lon: "-98.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad coordinates")
}

func TestCombineHHMM(t *testing.T) {
	tests := []struct {
		name string
		hhmm string
		want time.Time
	}{
		{"four digit", "1510", time.Date(2023, 6, 15, 15, 10, 0, 0, time.UTC)},
		{"three digit pads", "930", time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC)},
		{"midnight", "0000", testDay},
		{"bad hour", "2930", testDay},
		{"bad minutes", "1299", testDay},
		{"too short", "12", testDay},
		{"empty", "", testDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, combineHHMM(testDay, tt.hhmm))
		})
	}
}

func TestExtractSourceOffice(t *testing.T) {
	tests := []struct {
		name     string
		comments string
		want     string
	}{
		{"standard", "Large hail reported. (OUN)", "OUN"},
		{"trailing space", "Tree down. (DTX) ", "DTX"},
		{"no office", "Tree down on I-75.", ""},
		{"mid-string parens ignored", "Hail (quarter size) observed", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSourceOffice(tt.comments))
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name   string
		report StormReport
		want   ReportCategory
	}{
		{"tornado", StormReport{Kind: ReportTornado, Magnitude: 2, MagnitudeKnown: true}, CategoryTornado},
		{"small hail", StormReport{Kind: ReportHail, Magnitude: 1.0, MagnitudeKnown: true}, CategoryHail},
		{"large hail at threshold", StormReport{Kind: ReportHail, Magnitude: 2.0, MagnitudeKnown: true}, CategoryLargeHail},
		{"hail unknown stays base", StormReport{Kind: ReportHail, Magnitude: 0, MagnitudeKnown: false}, CategoryHail},
		{"wind below threshold", StormReport{Kind: ReportWind, Magnitude: 60, MagnitudeKnown: true}, CategoryWind},
		{"high wind at threshold", StormReport{Kind: ReportWind, Magnitude: 65, MagnitudeKnown: true}, CategoryHighWind},
		{"wind unknown stays base", StormReport{Kind: ReportWind, MagnitudeKnown: false}, CategoryWind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Category())
		})
	}
}

func TestID_DeterministicAndPrefixed(t *testing.T) {
	r := StormReport{
		Kind: ReportHail, State: "TX", Lat: 31.05, Lon: -98.42,
		RawTime: "1510", RawMagnitude: "175",
	}
	id1 := r.ID()
	id2 := r.ID()
	assert.Equal(t, id1, id2)
	assert.Contains(t, id1, "hail-")
	assert.Len(t, id1, len("hail-")+16)

	r.RawTime = "1511"
	assert.NotEqual(t, id1, r.ID())
}

func TestWire_KindSelectsMagnitudeColumn(t *testing.T) {
	hail := StormReport{Kind: ReportHail, RawTime: "1510", RawMagnitude: "175", State: "TX", Lat: 31.05, Lon: -98.42}
	wind := StormReport{Kind: ReportWind, RawTime: "1615", RawMagnitude: "70", State: "MI", Lat: 42.65, Lon: -83.16}
	torn := StormReport{Kind: ReportTornado, RawTime: "2200", RawMagnitude: "EF2", State: "OK", Lat: 35.2, Lon: -97.4}

	hw, ww, tw := hail.Wire(), wind.Wire(), torn.Wire()
	assert.Equal(t, "175", hw.Size)
	assert.Empty(t, hw.Speed)
	assert.Equal(t, "70", ww.Speed)
	assert.Empty(t, ww.Size)
	assert.Equal(t, "EF2", tw.FScale)
	assert.Equal(t, "tornado", tw.Type)

	// The wire format round-trips through JSON with CSV-style field names.
	b, err := json.Marshal(hw)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Size":"175"`)
	assert.Contains(t, string(b), `"Type":"hail"`)
	assert.Contains(t, string(b), `"Lat":"31.05"`)
}
