package merge

import (
	"testing"

	"github.com/ntpsec/gnssd/pkg/fix"
	"github.com/stretchr/testify/require"
)

// TestStatusMonotone reproduces spec.md S3: status only ever goes up
// within a merge cycle, never down, regardless of what later deltas
// claim.
func TestStatusMonotone(t *testing.T) {
	to := fix.New()
	to.Status = fix.StatusGPS

	from := fix.New()
	from.Status = fix.StatusDGPS
	Fix(&to, StatusSet, from)
	require.Equal(t, fix.StatusDGPS, to.Status)

	regress := fix.New()
	regress.Status = fix.StatusUnknown
	Fix(&to, StatusSet, regress)
	require.Equal(t, fix.StatusDGPS, to.Status, "status must not regress")
}

func TestUnsignalledFieldsPreserved(t *testing.T) {
	to := fix.New()
	to.Lat, to.Lon = 12.5, -45.25

	from := fix.New()
	from.Lat, from.Lon = 1, 2
	from.AltHAE = 100
	Fix(&to, AltSet, from) // LatLonSet NOT asserted

	require.Equal(t, 12.5, to.Lat)
	require.Equal(t, -45.25, to.Lon)
	require.Equal(t, 100.0, to.AltHAE)
}

func TestAltitudeOverwriteOnlyIfFinite(t *testing.T) {
	to := fix.New()
	to.AltHAE = 50

	from := fix.New() // AltHAE stays NaN
	Fix(&to, AltSet, from)
	require.Equal(t, 50.0, to.AltHAE, "NaN delta must not clobber a known value")
}

func TestDGPSRequiresBothFields(t *testing.T) {
	to := fix.New()

	from := fix.New()
	from.DGPSAge = 3.5
	from.DGPSStation = -1 // station absent
	Fix(&to, DGPSSet, from)
	require.False(t, fix.IsFinite(to.DGPSAge), "age must not apply without a station id")

	from.DGPSStation = 12
	Fix(&to, DGPSSet, from)
	require.Equal(t, 3.5, to.DGPSAge)
	require.Equal(t, 12, to.DGPSStation)
}

func TestAntennaSentinelDoesNotOverwrite(t *testing.T) {
	to := fix.New()
	to.Antenna = fix.AntennaOK

	from := fix.New()
	from.Antenna = fix.AntennaUnknown
	Fix(&to, AntennaSet, from)
	require.Equal(t, fix.AntennaOK, to.Antenna)
}

func TestDOPMergeOverwritesByFiniteness(t *testing.T) {
	to := fix.NewDOP()
	to.HDOP = 1.2

	from := fix.NewDOP()
	from.HDOP = 0.9
	DOPMerge(&to, from)
	require.Equal(t, 0.9, to.HDOP)
	require.False(t, fix.IsFinite(to.PDOP))
}
