package metcalc

import (
	"errors"
	"fmt"
	"math"
)

// LCL returns the lifting condensation level pressure (hPa) and temperature
// (°C) of a parcel at (p, tC, tdC), using Bolton (1980) eq. 15 for the
// temperature and a dry-adiabatic displacement for the pressure.
func LCL(p, tC, tdC float64) (pLCL, tLCL float64) {
	tK := CToK(tC)
	tdK := CToK(tdC)
	tL := 1/(1/(tdK-56) + math.Log(tK/tdK)/800) + 56
	pL := p * math.Pow(tL/tK, 1/kappa)
	return pL, KToC(tL)
}

// MoistLapse returns the temperature in K of a pseudoadiabatically displaced
// saturated parcel starting at (p0, t0K) and arriving at pressure p. The
// pseudoadiabatic equation is integrated with RK4 at roughly 1 hPa steps.
func MoistLapse(p, t0K, p0 float64) float64 {
	if p == p0 {
		return t0K
	}

	dTdp := func(pr, tK float64) float64 {
		rs := SaturationMixingRatio(pr, KToC(tK))
		num := rd*tK + lv*rs
		den := cp + lv*lv*rs*epsilon/(rd*tK*tK)
		return num / den / pr
	}

	steps := int(math.Ceil(math.Abs(p - p0)))
	if steps < 1 {
		steps = 1
	}
	if steps > 2000 {
		steps = 2000
	}
	h := (p - p0) / float64(steps)

	t := t0K
	pr := p0
	for i := 0; i < steps; i++ {
		k1 := dTdp(pr, t)
		k2 := dTdp(pr+h/2, t+h*k1/2)
		k3 := dTdp(pr+h/2, t+h*k2/2)
		k4 := dTdp(pr+h, t+h*k3)
		t += h * (k1 + 2*k2 + 2*k3 + k4) / 6
		pr += h
	}
	return t
}

// WetBulb returns the wet-bulb temperature in °C by Normand's rule: lift the
// parcel dry-adiabatically to its LCL, then bring it moist-adiabatically back
// to the starting pressure.
func WetBulb(p, tC, tdC float64) float64 {
	pL, tL := LCL(p, tC, tdC)
	return KToC(MoistLapse(p, CToK(tL), pL))
}

// ParcelProfile lifts a parcel from (pressure[0], t0C, td0C) through every
// given level: dry-adiabatic ascent to the LCL, pseudoadiabatic above.
// Pressures must be descending.
func ParcelProfile(pressure []float64, t0C, td0C float64) []float64 {
	out := make([]float64, len(pressure))
	if len(pressure) == 0 {
		return out
	}

	p0 := pressure[0]
	t0K := CToK(t0C)
	pLCL, tLCLc := LCL(p0, t0C, td0C)

	// Continue each moist step from the previous level so the integration
	// stays short regardless of profile depth.
	prevP, prevT := pLCL, CToK(tLCLc)
	for i, p := range pressure {
		if p >= pLCL {
			out[i] = KToC(DryLapse(p, t0K, p0))
			continue
		}
		t := MoistLapse(p, prevT, prevP)
		out[i] = KToC(t)
		prevP, prevT = p, t
	}
	return out
}

// MixedParcel averages potential temperature and mixing ratio over the lowest
// depth hPa of the profile (pressure-weighted) and returns the equivalent
// parcel at the surface pressure.
func MixedParcel(pressure, tC, tdC []float64, depth float64) (p0, t0C, td0C float64, err error) {
	n := len(pressure)
	if n < 3 {
		return 0, 0, 0, fmt.Errorf("mixed parcel: %d levels, need at least 3", n)
	}
	if len(tC) != n || len(tdC) != n {
		return 0, 0, 0, errors.New("mixed parcel: ragged profile slices")
	}

	p0 = pressure[0]
	pTop := p0 - depth
	if pTop <= pressure[n-1] {
		return 0, 0, 0, fmt.Errorf("mixed parcel: profile top %.1f hPa inside the %.0f hPa mixed layer", pressure[n-1], depth)
	}

	theta := make([]float64, n)
	w := make([]float64, n)
	for i := range pressure {
		theta[i] = PotentialTemperature(pressure[i], tC[i])
		w[i] = MixingRatio(SaturationVaporPressure(tdC[i]), pressure[i])
	}

	thetaMean := layerMean(pressure, theta, p0, pTop)
	wMean := layerMean(pressure, w, p0, pTop)

	t0K := thetaMean * math.Pow(p0/1000, kappa)
	e := VaporPressureFromMixingRatio(p0, wMean)
	return p0, KToC(t0K), DewpointFromVaporPressure(e), nil
}

// layerMean computes the pressure-weighted mean of vals between pBot and pTop
// (pBot > pTop) with linear interpolation at the layer bounds. Pressures are
// descending.
func layerMean(pressure, vals []float64, pBot, pTop float64) float64 {
	var area float64
	for i := 0; i < len(pressure)-1; i++ {
		hi, lo := pressure[i], pressure[i+1] // hi > lo
		if lo >= pBot || hi <= pTop {
			continue
		}
		top := math.Min(hi, pBot)
		bot := math.Max(lo, pTop)
		if bot >= top {
			continue
		}
		vTop := interpAt(hi, lo, vals[i], vals[i+1], top)
		vBot := interpAt(hi, lo, vals[i], vals[i+1], bot)
		area += 0.5 * (vTop + vBot) * (top - bot)
	}
	return area / (pBot - pTop)
}

func interpAt(p1, p2, v1, v2, p float64) float64 {
	if p1 == p2 {
		return v1
	}
	frac := (p - p1) / (p2 - p1)
	return v1 + frac*(v2-v1)
}
