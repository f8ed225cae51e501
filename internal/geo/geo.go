// Package geo provides the spherical geometry the tools need: great-circle
// distances along a cross-section and a Lambert conformal conic projection
// for the report map.
package geo

import "math"

// EarthRadiusM is the authalic sphere radius in meters, the same sphere the
// upstream sounding and model products assume.
const EarthRadiusM = 6370997.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// SphereDistance returns the great-circle distance in meters between two
// points on the sphere, by the haversine formula.
func SphereDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * EarthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// LambertConformal is a spherical Lambert conformal conic projection with two
// standard parallels. The zero value is unusable; construct with
// NewLambertConformal.
type LambertConformal struct {
	centralLon float64 // radians
	n          float64
	rf         float64 // R·F
	rho0       float64
}

// NewLambertConformal builds a projection centered on (centralLon,
// centralLat) degrees with the given standard parallels.
func NewLambertConformal(centralLon, centralLat, stdPar1, stdPar2 float64) LambertConformal {
	phi0 := radians(centralLat)
	phi1 := radians(stdPar1)
	phi2 := radians(stdPar2)

	var n float64
	if phi1 == phi2 {
		n = math.Sin(phi1)
	} else {
		n = math.Log(math.Cos(phi1)/math.Cos(phi2)) /
			math.Log(math.Tan(math.Pi/4+phi2/2)/math.Tan(math.Pi/4+phi1/2))
	}
	f := math.Cos(phi1) * math.Pow(math.Tan(math.Pi/4+phi1/2), n) / n
	rf := EarthRadiusM * f

	lc := LambertConformal{
		centralLon: radians(centralLon),
		n:          n,
		rf:         rf,
	}
	lc.rho0 = lc.rho(phi0)
	return lc
}

func (lc LambertConformal) rho(phi float64) float64 {
	return lc.rf / math.Pow(math.Tan(math.Pi/4+phi/2), lc.n)
}

// Forward projects a lon/lat point in degrees to map coordinates in meters,
// with the projection center at the origin.
func (lc LambertConformal) Forward(lon, lat float64) (x, y float64) {
	rho := lc.rho(radians(lat))
	theta := lc.n * (radians(lon) - lc.centralLon)
	return rho * math.Sin(theta), lc.rho0 - rho*math.Cos(theta)
}
