package metcalc

import "math"

// US standard atmosphere surface values and tropospheric lapse rate.
const (
	stdSurfacePressure = 1013.25 // hPa
	stdSurfaceTemp     = 288.15  // K
	stdLapseRate       = 0.0065  // K/m
	stdExponent        = 5.255877
)

// HeightToPressureStd converts a height in m to pressure in hPa in the US
// standard atmosphere. Valid through the troposphere, which covers every
// station elevation and flight level the tools see.
func HeightToPressureStd(m float64) float64 {
	return stdSurfacePressure * math.Pow(1-stdLapseRate*m/stdSurfaceTemp, stdExponent)
}

// PressureToHeightStd converts a pressure in hPa to height in m in the US
// standard atmosphere.
func PressureToHeightStd(hPa float64) float64 {
	return stdSurfaceTemp / stdLapseRate * (1 - math.Pow(hPa/stdSurfacePressure, 1/stdExponent))
}
