package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSphereDistance(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		assert.Zero(t, SphereDistance(42.65, -83.16, 42.65, -83.16))
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := SphereDistance(0, 0, 0, 1)
		assert.InDelta(t, 2*math.Pi*EarthRadiusM/360, d, 1)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := SphereDistance(41, -100, 42, -100)
		assert.InDelta(t, 2*math.Pi*EarthRadiusM/360, d, 1)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := SphereDistance(41.13, -100.68, 41.32, -96.37)
		b := SphereDistance(41.32, -96.37, 41.13, -100.68)
		assert.InDelta(t, a, b, 1e-6)
		// North Platte to Omaha is a bit under 400 km.
		assert.Greater(t, a, 300_000.0)
		assert.Less(t, a, 400_000.0)
	})
}

func TestLambertConformal(t *testing.T) {
	lc := NewLambertConformal(-85.6, 44.3, 30, 60)

	t.Run("center at origin", func(t *testing.T) {
		x, y := lc.Forward(-85.6, 44.3)
		assert.InDelta(t, 0, x, 1e-6)
		assert.InDelta(t, 0, y, 1e-6)
	})

	t.Run("orientation", func(t *testing.T) {
		x, _ := lc.Forward(-83.0, 44.3)
		assert.Greater(t, x, 0.0) // east of center

		_, y := lc.Forward(-85.6, 46.0)
		assert.Greater(t, y, 0.0) // north of center

		x, y = lc.Forward(-88.0, 42.0)
		assert.Less(t, x, 0.0)
		assert.Less(t, y, 0.0)
	})

	t.Run("true scale at a standard parallel", func(t *testing.T) {
		x1, y1 := lc.Forward(-85.6, 30)
		x2, y2 := lc.Forward(-84.6, 30)
		projected := math.Hypot(x2-x1, y2-y1)
		trueDist := SphereDistance(30, -85.6, 30, -84.6)
		assert.InDelta(t, trueDist, projected, trueDist*0.001)
	})

	t.Run("straight meridian through the center", func(t *testing.T) {
		x, _ := lc.Forward(-85.6, 41.5)
		assert.InDelta(t, 0, x, 1e-6)
	})
}
