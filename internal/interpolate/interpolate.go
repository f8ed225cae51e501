// Package interpolate provides the gridding primitives behind the
// cross-section: log-linear vertical interpolation onto shared pressure
// levels, cubic interpolation across stations, and Gaussian grid smoothing.
package interpolate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// VerticalLogLinear interpolates a profile quantity onto target pressure
// levels, linear in ln pressure. Input levels follow profile order (pressure
// descending). Targets outside the observed range clamp to the nearest
// endpoint value, so a 1000 hPa grid level below a hilltop station simply
// repeats the lowest observation.
func VerticalLogLinear(pressure, values, targets []float64) ([]float64, error) {
	n := len(pressure)
	if n != len(values) {
		return nil, fmt.Errorf("vertical interp: %d pressures vs %d values", n, len(values))
	}
	if n < 2 {
		return nil, errors.New("vertical interp: need at least 2 levels")
	}

	out := make([]float64, len(targets))
	for j, t := range targets {
		switch {
		case t >= pressure[0]:
			out[j] = values[0]
		case t <= pressure[n-1]:
			out[j] = values[n-1]
		default:
			// Find the bracketing pair in the descending column.
			i := 0
			for i < n-1 && pressure[i+1] > t {
				i++
			}
			x0, x1 := math.Log(pressure[i]), math.Log(pressure[i+1])
			frac := (math.Log(t) - x0) / (x1 - x0)
			out[j] = values[i] + frac*(values[i+1]-values[i])
		}
	}
	return out, nil
}

// AcrossSection interpolates one pressure level's station values onto the
// section's x axis. With three or more stations a natural cubic spline is
// used, matching the smooth fields a scattered cubic interpolant produces on
// data that is already gridded in the vertical; two stations fall back to a
// straight line. Distances must be strictly increasing.
func AcrossSection(dist, values, xs []float64) ([]float64, error) {
	if len(dist) != len(values) {
		return nil, fmt.Errorf("section interp: %d distances vs %d values", len(dist), len(values))
	}
	if len(dist) < 2 {
		return nil, errors.New("section interp: need at least 2 stations")
	}
	for i := 1; i < len(dist); i++ {
		// interp.Fit panics on unsorted xs; trade that for an error.
		if dist[i] <= dist[i-1] {
			return nil, fmt.Errorf("section interp: distances not increasing at %d", i)
		}
	}

	var pred interp.Predictor
	if len(dist) >= 3 {
		var nc interp.NaturalCubic
		if err := nc.Fit(dist, values); err != nil {
			return nil, fmt.Errorf("section interp: %w", err)
		}
		pred = &nc
	} else {
		var pl interp.PiecewiseLinear
		if err := pl.Fit(dist, values); err != nil {
			return nil, fmt.Errorf("section interp: %w", err)
		}
		pred = &pl
	}

	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = pred.Predict(x)
	}
	return out, nil
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
