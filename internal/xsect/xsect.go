// Package xsect assembles radiosonde profiles into a 2D cross-section grid:
// each profile is interpolated onto shared pressure levels, then each level is
// interpolated across stations onto an even x axis.
package xsect

import (
	"fmt"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/geo"
	"github.com/anthony-illenden/METR-Compilation/internal/interpolate"
	"github.com/anthony-illenden/METR-Compilation/internal/metcalc"
)

// Grid field names.
const (
	FieldTemperature = "temperature"  // °C
	FieldDewpoint    = "dewpoint"     // °C
	FieldUWind       = "u_wind"       // kt
	FieldVWind       = "v_wind"       // kt
	FieldTheta       = "theta"        // K, derived
	FieldMixingRatio = "mixing_ratio" // g/kg, derived
)

// Options controls the interpolation grid.
type Options struct {
	Start float64 // bottom pressure level, hPa
	End   float64 // top pressure level, hPa
	Step  float64 // level spacing, hPa
	NX    int     // points on the x axis
}

func (o Options) withDefaults() Options {
	if o.Start == 0 {
		o.Start = 1000
	}
	if o.End == 0 {
		o.End = 100
	}
	if o.Step == 0 {
		o.Step = 10
	}
	if o.NX == 0 {
		o.NX = 100
	}
	return o
}

// StationSample carries one station's position on the section and its raw
// wind column, for barbs and labels drawn at the true observation levels.
type StationSample struct {
	ID       string
	Dist     float64   // m from the first station
	Terrain  float64   // station elevation as a pressure, hPa
	Pressure []float64 // hPa, observed levels
	U        []float64 // kt
	V        []float64 // kt
}

// Section is the assembled cross-section. Fields are indexed
// [level][x]: Fields[f][li][xi] is the value of f at Levels[li], X[xi].
type Section struct {
	Valid    time.Time
	Stations []StationSample
	Levels   []float64 // hPa, Start down to End
	X        []float64 // m from the first station
	Fields   map[string][][]float64
}

// Build interpolates the profiles onto the section grid. Profiles must be
// ordered along the section; distances are measured from the first station.
func Build(profiles []domain.Profile, opts Options) (*Section, error) {
	if len(profiles) < 2 {
		return nil, fmt.Errorf("cross-section needs at least 2 stations, got %d", len(profiles))
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	o := opts.withDefaults()
	levels := levelGrid(o.Start, o.End, o.Step)
	nLev := len(levels)
	nStn := len(profiles)

	// Per-station vertical interpolation onto the shared levels.
	byStation := map[string][][]float64{
		FieldTemperature: make([][]float64, nStn),
		FieldDewpoint:    make([][]float64, nStn),
		FieldUWind:       make([][]float64, nStn),
		FieldVWind:       make([][]float64, nStn),
	}
	sec := &Section{
		Valid:    profiles[0].ObservedAt,
		Stations: make([]StationSample, nStn),
		Levels:   levels,
	}

	origin := profiles[0].Station
	for i, p := range profiles {
		u, v := p.UV()
		sec.Stations[i] = StationSample{
			ID:       p.Station.ID,
			Dist:     geo.SphereDistance(origin.Lat, origin.Lon, p.Station.Lat, p.Station.Lon),
			Terrain:  metcalc.HeightToPressureStd(p.Station.ElevationM),
			Pressure: p.Pressure,
			U:        u,
			V:        v,
		}
		if i > 0 && sec.Stations[i].Dist <= sec.Stations[i-1].Dist {
			return nil, fmt.Errorf("stations out of order along section: %s is not past %s",
				p.Station.ID, profiles[i-1].Station.ID)
		}

		var err error
		for field, src := range map[string][]float64{
			FieldTemperature: p.Temperature,
			FieldDewpoint:    p.Dewpoint,
			FieldUWind:       u,
			FieldVWind:       v,
		} {
			byStation[field][i], err = interpolate.VerticalLogLinear(p.Pressure, src, levels)
			if err != nil {
				return nil, fmt.Errorf("station %s: %w", p.Station.ID, err)
			}
		}
	}

	// Across-station interpolation, one pressure level at a time.
	dist := make([]float64, nStn)
	for i, s := range sec.Stations {
		dist[i] = s.Dist
	}
	sec.X = interpolate.Linspace(dist[0], dist[nStn-1], o.NX)

	sec.Fields = make(map[string][][]float64, 6)
	for _, field := range []string{FieldTemperature, FieldDewpoint, FieldUWind, FieldVWind} {
		grid := make([][]float64, nLev)
		stnVals := make([]float64, nStn)
		for li := range levels {
			for si := range profiles {
				stnVals[si] = byStation[field][si][li]
			}
			row, err := interpolate.AcrossSection(dist, stnVals, sec.X)
			if err != nil {
				return nil, fmt.Errorf("level %.0f hPa: %w", levels[li], err)
			}
			grid[li] = row
		}
		sec.Fields[field] = grid
	}

	sec.Fields[FieldTheta], sec.Fields[FieldMixingRatio] = derive(sec)
	return sec, nil
}

// derive computes potential temperature (K) and mixing ratio (g/kg) on the
// interpolated grid.
func derive(sec *Section) (theta, mixRat [][]float64) {
	theta = make([][]float64, len(sec.Levels))
	mixRat = make([][]float64, len(sec.Levels))
	for li, p := range sec.Levels {
		theta[li] = make([]float64, len(sec.X))
		mixRat[li] = make([]float64, len(sec.X))
		for xi := range sec.X {
			t := sec.Fields[FieldTemperature][li][xi]
			td := sec.Fields[FieldDewpoint][li][xi]
			theta[li][xi] = metcalc.PotentialTemperature(p, t)
			rh := metcalc.RelativeHumidity(t, td)
			mixRat[li][xi] = metcalc.MixingRatioFromRelativeHumidity(p, t, rh) * 1000
		}
	}
	return theta, mixRat
}

func levelGrid(start, end, step float64) []float64 {
	var levels []float64
	for p := start; p >= end; p -= step {
		levels = append(levels, p)
	}
	return levels
}
