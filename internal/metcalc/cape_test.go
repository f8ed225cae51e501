package metcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unstableProfile is a summertime convective setup: warm moist boundary layer
// under a steep mid-level lapse rate.
func unstableProfile() (pressure, temp, dew []float64) {
	pressure = []float64{1000, 925, 850, 700, 500, 300}
	temp = []float64{30, 24, 18, 8, -12, -40}
	dew = []float64{22, 19, 14, 4, -20, -55}
	return
}

// stableProfile keeps every lifted parcel colder than the environment.
func stableProfile() (pressure, temp, dew []float64) {
	pressure = []float64{1000, 925, 850, 700, 500, 300}
	temp = []float64{10, 9, 8, 5, -5, -30}
	dew = []float64{-5, -6, -8, -15, -30, -50}
	return
}

func TestCAPECIN_Unstable(t *testing.T) {
	pressure, temp, dew := unstableProfile()
	parcel := ParcelProfile(pressure, temp[0], dew[0])

	cape, cin, err := CAPECIN(pressure, temp, dew, parcel)
	require.NoError(t, err)
	assert.Greater(t, cape, 500.0)
	assert.Less(t, cape, 6000.0)
	assert.LessOrEqual(t, cin, 0.0)
}

func TestCAPECIN_Stable(t *testing.T) {
	pressure, temp, dew := stableProfile()
	parcel := ParcelProfile(pressure, temp[0], dew[0])

	cape, cin, err := CAPECIN(pressure, temp, dew, parcel)
	require.NoError(t, err)
	assert.Zero(t, cape)
	assert.Zero(t, cin)
}

func TestCAPECIN_Errors(t *testing.T) {
	t.Run("too few levels", func(t *testing.T) {
		_, _, err := CAPECIN([]float64{1000, 900}, []float64{20, 15}, []float64{10, 5}, []float64{20, 16})
		require.Error(t, err)
	})

	t.Run("ragged slices", func(t *testing.T) {
		_, _, err := CAPECIN([]float64{1000, 900, 800}, []float64{20, 15}, []float64{10, 5, 0}, []float64{20, 16, 12})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ragged")
	})
}

func TestMixedLayerCAPECIN(t *testing.T) {
	pressure, temp, dew := unstableProfile()

	cape, cin, err := MixedLayerCAPECIN(pressure, temp, dew, 50)
	require.NoError(t, err)
	assert.Greater(t, cape, 0.0)
	assert.LessOrEqual(t, cin, 0.0)

	// Mixing dilutes the surface parcel, so mixed-layer CAPE should not
	// exceed the pure surface-based value for this profile.
	parcel := ParcelProfile(pressure, temp[0], dew[0])
	sbCape, _, err := CAPECIN(pressure, temp, dew, parcel)
	require.NoError(t, err)
	assert.LessOrEqual(t, cape, sbCape)
}

func TestLFCEL(t *testing.T) {
	pressure, temp, dew := unstableProfile()
	parcel := ParcelProfile(pressure, temp[0], dew[0])

	pLFC, pEL, ok := LFCEL(pressure, temp, dew, parcel)
	require.True(t, ok)
	assert.Greater(t, pLFC, pEL)
	assert.LessOrEqual(t, pLFC, 1000.0)
	assert.GreaterOrEqual(t, pEL, 300.0)

	t.Run("stable profile has none", func(t *testing.T) {
		pressure, temp, dew := stableProfile()
		parcel := ParcelProfile(pressure, temp[0], dew[0])
		_, _, ok := LFCEL(pressure, temp, dew, parcel)
		assert.False(t, ok)
	})
}
