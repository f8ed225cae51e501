package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/anthony-illenden/METR-Compilation/internal/metcalc"
)

// Station identifies the site or platform a profile was observed at.
type Station struct {
	ID         string
	Name       string
	Lat        float64
	Lon        float64
	ElevationM float64
}

// Profile is one vertical sounding stored as parallel slices, ordered
// surface-first with strictly decreasing pressure. Construct via a provider
// and call Normalize before deriving anything from it.
type Profile struct {
	Station    Station
	ObservedAt time.Time

	Pressure    []float64 // hPa
	Height      []float64 // m above sea level
	Temperature []float64 // °C
	Dewpoint    []float64 // °C
	WindDir     []float64 // degrees from true north
	WindSpeed   []float64 // kt
}

// Len returns the number of levels.
func (p Profile) Len() int { return len(p.Pressure) }

// Validate checks the profile is usable: at least two levels, parallel slices
// of equal length, and positive, strictly decreasing pressures.
func (p Profile) Validate() error {
	n := len(p.Pressure)
	if n < 2 {
		return fmt.Errorf("profile %s: %d levels, need at least 2", p.Station.ID, n)
	}
	if len(p.Height) != n || len(p.Temperature) != n || len(p.Dewpoint) != n ||
		len(p.WindDir) != n || len(p.WindSpeed) != n {
		return fmt.Errorf("profile %s: ragged level slices", p.Station.ID)
	}
	for i, pr := range p.Pressure {
		if pr <= 0 || math.IsNaN(pr) {
			return fmt.Errorf("profile %s: bad pressure %v at level %d", p.Station.ID, pr, i)
		}
		if i > 0 && pr >= p.Pressure[i-1] {
			return fmt.Errorf("profile %s: pressure not decreasing at level %d", p.Station.ID, i)
		}
	}
	return nil
}

// Normalize returns a copy with unusable levels dropped: NaN pressure and any
// level whose pressure does not decrease from the previously kept one.
// Raw products occasionally repeat a level or report a ducted ascent out of
// order; downstream interpolation needs a clean monotonic column.
func (p Profile) Normalize() Profile {
	out := Profile{Station: p.Station, ObservedAt: p.ObservedAt}
	last := math.Inf(1)
	for i := range p.Pressure {
		pr := p.Pressure[i]
		if math.IsNaN(pr) || pr <= 0 || pr >= last {
			continue
		}
		out.Pressure = append(out.Pressure, pr)
		out.Height = append(out.Height, p.Height[i])
		out.Temperature = append(out.Temperature, p.Temperature[i])
		out.Dewpoint = append(out.Dewpoint, p.Dewpoint[i])
		out.WindDir = append(out.WindDir, p.WindDir[i])
		out.WindSpeed = append(out.WindSpeed, p.WindSpeed[i])
		last = pr
	}
	return out
}

// UV derives the zonal and meridional wind components in kt for every level.
func (p Profile) UV() (u, v []float64) {
	u = make([]float64, p.Len())
	v = make([]float64, p.Len())
	for i := range p.Pressure {
		u[i], v[i] = metcalc.WindComponents(p.WindSpeed[i], p.WindDir[i])
	}
	return u, v
}

// Surface returns the lowest level's pressure, temperature, and dewpoint.
func (p Profile) Surface() (pres, t, td float64, err error) {
	if p.Len() == 0 {
		return 0, 0, 0, errors.New("empty profile")
	}
	return p.Pressure[0], p.Temperature[0], p.Dewpoint[0], nil
}
