// Package metcalc implements the thermodynamic and kinematic derivations the
// tools need: moisture variables after Bolton (1980), potential temperature,
// dry and pseudoadiabatic lapse rates, lifted-parcel profiles, mixed-layer
// CAPE/CIN, and US standard atmosphere conversions.
//
// Unless a name says otherwise, pressures are hPa, temperatures °C, heights m,
// wind speeds kt, and mixing ratios dimensionless (kg/kg).
package metcalc

import "math"

// Dry-air and moisture constants, US standard atmosphere values.
const (
	rd      = 287.04749 // J/(kg·K), dry air gas constant
	cp      = 1004.6662 // J/(kg·K), dry air specific heat at constant pressure
	kappa   = rd / cp
	epsilon = 0.62195691 // Mw/Md, molecular weight ratio of water to dry air
	lv      = 2.501e6    // J/kg, latent heat of vaporization
)

// CToK converts Celsius to Kelvin.
func CToK(c float64) float64 { return c + 273.15 }

// KToC converts Kelvin to Celsius.
func KToC(k float64) float64 { return k - 273.15 }

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 { return c*1.8 + 32 }

// KToF converts Kelvin to Fahrenheit.
func KToF(k float64) float64 { return CToF(KToC(k)) }

// KtToMS converts knots to m/s.
func KtToMS(kt float64) float64 { return kt * 0.514444 }

// WindComponents resolves a speed and meteorological direction (degrees the
// wind blows from) into zonal and meridional components in the input unit.
func WindComponents(speed, dirDeg float64) (u, v float64) {
	rad := dirDeg * math.Pi / 180
	return -speed * math.Sin(rad), -speed * math.Cos(rad)
}
