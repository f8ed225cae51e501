package metcalc

import "math"

// SaturationVaporPressure returns the saturation vapor pressure in hPa over
// liquid water, Bolton (1980) eq. 10.
func SaturationVaporPressure(tC float64) float64 {
	return 6.112 * math.Exp(17.67*tC/(tC+243.5))
}

// DewpointFromVaporPressure inverts Bolton's formula, returning the dewpoint
// in °C for a vapor pressure in hPa.
func DewpointFromVaporPressure(e float64) float64 {
	ln := math.Log(e / 6.112)
	return 243.5 * ln / (17.67 - ln)
}

// MixingRatio returns the mass mixing ratio (kg/kg) for a vapor pressure and
// total pressure, both hPa.
func MixingRatio(e, p float64) float64 {
	return epsilon * e / (p - e)
}

// SaturationMixingRatio returns the saturation mixing ratio (kg/kg) at the
// given pressure and temperature.
func SaturationMixingRatio(p, tC float64) float64 {
	return MixingRatio(SaturationVaporPressure(tC), p)
}

// VaporPressureFromMixingRatio returns the vapor pressure in hPa implied by a
// mixing ratio at the given total pressure.
func VaporPressureFromMixingRatio(p, w float64) float64 {
	return p * w / (epsilon + w)
}

// RelativeHumidity returns the relative humidity (0..1) from temperature and
// dewpoint.
func RelativeHumidity(tC, tdC float64) float64 {
	return SaturationVaporPressure(tdC) / SaturationVaporPressure(tC)
}

// MixingRatioFromRelativeHumidity returns the mixing ratio (kg/kg) for a
// relative humidity (0..1) at the given pressure and temperature.
func MixingRatioFromRelativeHumidity(p, tC, rh float64) float64 {
	return rh * SaturationMixingRatio(p, tC)
}

// PotentialTemperature returns θ in K for a level at pressure p and
// temperature tC, referenced to 1000 hPa.
func PotentialTemperature(p, tC float64) float64 {
	return CToK(tC) * math.Pow(1000/p, kappa)
}

// DryLapse returns the temperature in K of a dry-adiabatically displaced
// parcel starting at (p0, t0K) and arriving at pressure p.
func DryLapse(p, t0K, p0 float64) float64 {
	return t0K * math.Pow(p/p0, kappa)
}

// VirtualTemperature returns the virtual temperature in K for an absolute
// temperature and mixing ratio.
func VirtualTemperature(tK, w float64) float64 {
	return tK * (w + epsilon) / (epsilon * (1 + w))
}
