package metcalc

import (
	"errors"
	"fmt"
	"math"
)

// buoyancyProfile is the crossing-augmented buoyancy trace used to locate the
// LFC and EL and to integrate CAPE/CIN.
type buoyancyProfile struct {
	p []float64 // hPa, descending
	x []float64 // ln p
	y []float64 // Rd·(Tv_parcel − Tv_env), J/(kg·ln p)

	pLFC   float64
	pEL    float64
	hasLFC bool
}

// CAPECIN integrates parcel buoyancy against the environment, returning CAPE
// (≥ 0) and CIN (≤ 0) in J/kg. The environment and parcel traces share the
// pressure column; both are virtual-temperature corrected, with the parcel
// carrying its founding moisture below the LCL and saturation above. Without
// an LFC both values are zero.
func CAPECIN(pressure, tEnvC, tdEnvC, tParcelC []float64) (cape, cin float64, err error) {
	bp, err := newBuoyancyProfile(pressure, tEnvC, tdEnvC, tParcelC)
	if err != nil {
		return 0, 0, err
	}
	if !bp.hasLFC {
		return 0, 0, nil
	}

	for i := 0; i < len(bp.p)-1; i++ {
		pMid := math.Sqrt(bp.p[i] * bp.p[i+1])
		seg := 0.5 * (bp.y[i] + bp.y[i+1]) * (bp.x[i] - bp.x[i+1])
		switch {
		case pMid <= bp.pLFC && pMid >= bp.pEL && seg > 0:
			cape += seg
		case pMid >= bp.pLFC && seg < 0:
			cin += seg
		}
	}

	if cin > 0 {
		cin = 0
	}
	return cape, cin, nil
}

// MixedLayerCAPECIN mixes the lowest depth hPa into a single parcel, lifts
// it through the profile, and integrates CAPE/CIN against the environment.
func MixedLayerCAPECIN(pressure, tC, tdC []float64, depth float64) (cape, cin float64, err error) {
	_, tMix, tdMix, err := MixedParcel(pressure, tC, tdC, depth)
	if err != nil {
		return 0, 0, err
	}
	parcel := ParcelProfile(pressure, tMix, tdMix)
	return CAPECIN(pressure, tC, tdC, parcel)
}

// LFCEL locates the level of free convection and equilibrium level pressures
// for a lifted parcel trace. ok is false when the parcel never becomes
// buoyant.
func LFCEL(pressure, tEnvC, tdEnvC, tParcelC []float64) (pLFC, pEL float64, ok bool) {
	bp, err := newBuoyancyProfile(pressure, tEnvC, tdEnvC, tParcelC)
	if err != nil || !bp.hasLFC {
		return 0, 0, false
	}
	return bp.pLFC, bp.pEL, true
}

func newBuoyancyProfile(pressure, tEnvC, tdEnvC, tParcelC []float64) (buoyancyProfile, error) {
	n := len(pressure)
	if n < 3 {
		return buoyancyProfile{}, fmt.Errorf("cape/cin: %d levels, need at least 3", n)
	}
	if len(tEnvC) != n || len(tdEnvC) != n || len(tParcelC) != n {
		return buoyancyProfile{}, errors.New("cape/cin: ragged profile slices")
	}

	pLCL, _ := LCL(pressure[0], tParcelC[0], tdEnvC[0])

	// Buoyancy with the virtual temperature correction. Below the LCL the
	// parcel carries the environment moisture; above it is saturated.
	y := make([]float64, n)
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		wEnv := SaturationMixingRatio(pressure[i], tdEnvC[i])
		wParcel := wEnv
		if pressure[i] <= pLCL {
			wParcel = SaturationMixingRatio(pressure[i], tParcelC[i])
		}
		tvEnv := VirtualTemperature(CToK(tEnvC[i]), wEnv)
		tvParcel := VirtualTemperature(CToK(tParcelC[i]), wParcel)
		y[i] = rd * (tvParcel - tvEnv)
		x[i] = math.Log(pressure[i])
	}

	bp := buoyancyProfile{}
	bp.p = append(bp.p, pressure[0])
	bp.x = append(bp.x, x[0])
	bp.y = append(bp.y, y[0])
	for i := 0; i < n-1; i++ {
		if y[i]*y[i+1] < 0 {
			xc := x[i] + (x[i+1]-x[i])*(0-y[i])/(y[i+1]-y[i])
			bp.p = append(bp.p, math.Exp(xc))
			bp.x = append(bp.x, xc)
			bp.y = append(bp.y, 0)
		}
		bp.p = append(bp.p, pressure[i+1])
		bp.x = append(bp.x, x[i+1])
		bp.y = append(bp.y, y[i+1])
	}

	bp.locateLFCEL(pLCL)
	return bp, nil
}

// locateLFCEL finds the first buoyant run at or above the LCL. A parcel
// positive from the surface onward gets its LFC at the LCL.
func (bp *buoyancyProfile) locateLFCEL(pLCL float64) {
	m := -1
	for i, yi := range bp.y {
		if yi > 0 && bp.p[i] <= pLCL {
			m = i
			break
		}
	}
	if m == -1 {
		return
	}

	// Walk back to the start of this positive run.
	runStart := 0
	for i := m; i > 0; i-- {
		if bp.y[i-1] < 0 {
			runStart = i
			break
		}
	}
	bp.pLFC = math.Min(bp.p[runStart], pLCL)

	// EL: top of the last buoyant segment, or the profile top when the
	// parcel is still buoyant there.
	last := len(bp.y) - 1
	bp.pEL = bp.p[last]
	if bp.y[last] <= 0 {
		for i := last; i > 0; i-- {
			if bp.y[i] == 0 && bp.y[i-1] > 0 {
				bp.pEL = bp.p[i]
				break
			}
		}
	}
	bp.hasLFC = true
}
